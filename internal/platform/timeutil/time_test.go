package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2011-01-26T19:01:12Z", time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC)},
		{"2011-01-26T19:01:12.500Z", time.Date(2011, 1, 26, 19, 1, 12, 500000000, time.UTC)},
		{"2011-01-26T21:01:12+02:00", time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Parse("yesterday"); err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
}

func TestParseOptional(t *testing.T) {
	got, err := ParseOptional("")
	if err != nil {
		t.Fatalf("unexpected error for empty timestamp: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}

	got, err = ParseOptional("2011-01-26T19:01:12Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}

	if _, err := ParseOptional("yesterday"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestFormat(t *testing.T) {
	if got := Format(time.Time{}); got != nil {
		t.Fatalf("expected nil for zero time, got %q", *got)
	}

	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2011, 1, 26, 19, 1, 12, 0, time.UTC), "2011-01-26T19:01:12Z"},
		{time.Date(2024, 6, 1, 12, 30, 0, 500000000, time.UTC), "2024-06-01T12:30:00.5Z"},
		{time.Date(2011, 1, 26, 21, 1, 12, 0, time.FixedZone("EET", 2*60*60)), "2011-01-26T19:01:12Z"},
	}
	for _, tt := range tests {
		got := Format(tt.in)
		if got == nil || *got != tt.want {
			t.Fatalf("Format(%v) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 1, 30, 0, 0, time.FixedZone("CET", 2*60*60))
	if got := Date(ts); got != "2023-12-31" {
		t.Fatalf("expected UTC date 2023-12-31, got %s", got)
	}
}

func TestDatePrefix(t *testing.T) {
	tests := map[string]string{
		"2024-03-01T10:00:00Z": "2024-03-01",
		"2024-03-01":           "2024-03-01",
		"":                     "",
	}
	for in, want := range tests {
		if got := DatePrefix(in); got != want {
			t.Fatalf("DatePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
