package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/crisphub/internal/platform/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"
)

var installOnce sync.Once

// DetailError is the error body returned by every endpoint: {"detail": "..."}.
type DetailError struct {
	status int
	Detail string `json:"detail" doc:"Human-readable error message" example:"GitHub API error: 404 - Not Found"`
}

// Error implements error.
func (e *DetailError) Error() string {
	return e.Detail
}

// GetStatus implements huma.StatusError.
func (e *DetailError) GetStatus() int {
	return e.status
}

// ContentType keeps error responses on the negotiated media type instead of
// huma's problem+json default.
func (e *DetailError) ContentType(ct string) string {
	if ct == "application/problem+json" {
		return contentTypeJSON
	}
	if ct == "application/problem+cbor" {
		return contentTypeCBOR
	}
	return ct
}

// Install makes huma build every framework-generated error (validation, negotiation,
// unexpected handler errors) as a DetailError. Call before registering operations so
// the OpenAPI error schema matches.
func Install() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return newDetailError(context.Background(), status, msg, errs...)
		}
		huma.NewErrorWithContext = func(hctx huma.Context, status int, msg string, errs ...error) huma.StatusError {
			ctx := context.Background()
			if hctx != nil {
				ctx = hctx.Context()
			}
			return newDetailError(ctx, status, msg, errs...)
		}
	})
}

// Error returns a logged DetailError with the given status and message.
func Error(ctx context.Context, status int, msg string, errs ...error) huma.StatusError {
	return newDetailError(ctx, status, msg, errs...)
}

func newDetailError(ctx context.Context, status int, msg string, errs ...error) *DetailError {
	detail := messageOrDefault(status, msg)
	if issues := issuesFromErrors(errs); len(issues) > 0 {
		detail += ": " + strings.Join(issues, "; ")
	}
	logWithStatus(ctx, status, detail, errors.Join(errs...))
	return &DetailError{status: status, Detail: detail}
}

// Write renders {"detail": detail} as CBOR when the client asks for it, JSON otherwise.
func Write(w http.ResponseWriter, r *http.Request, status int, detail string) error {
	body := DetailError{status: status, Detail: detail}
	if acceptsCBOR(r.Header.Get("Accept")) {
		data, err := cbor.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding cbor error body: %w", err)
		}
		w.Header().Set("Content-Type", contentTypeCBOR)
		w.WriteHeader(status)
		_, err = w.Write(data)
		return err
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(body)
}

// NotFoundHandler answers unknown routes with 404 {"detail": "Not Found"}.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := Write(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound)); err != nil {
			applog.LogError(r.Context(), "failed to render not found", err)
		}
	}
}

// MethodNotAllowedHandler answers with 405 and an Allow header listing the methods
// chi can route for the path.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		if err := Write(w, r, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)); err != nil {
			applog.LogError(r.Context(), "failed to render method not allowed", err)
		}
	}
}

// Recoverer converts panics into 500 {"detail": "Internal Server Error"}.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				applog.LogError(r.Context(), "panic recovered", err, zap.ByteString("stack", debug.Stack()))
				if writeErr := Write(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)); writeErr != nil {
					applog.LogError(r.Context(), "failed to render internal error", writeErr)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// acceptsCBOR reports whether CBOR is preferred over JSON. Only explicit CBOR
// requests qualify; wildcards and missing headers fall back to JSON.
func acceptsCBOR(accept string) bool {
	cborQ, jsonQ := -1.0, -1.0
	for part := range strings.SplitSeq(accept, ",") {
		mediaType, q := parseMediaRange(part)
		switch mediaType {
		case contentTypeCBOR:
			cborQ = max(cborQ, q)
		case contentTypeJSON:
			jsonQ = max(jsonQ, q)
		}
	}
	return cborQ > 0 && cborQ >= jsonQ
}

func parseMediaRange(part string) (string, float64) {
	mediaType, params, _ := strings.Cut(strings.TrimSpace(part), ";")
	q := 1.0
	for param := range strings.SplitSeq(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(param), "=")
		if !found || !strings.EqualFold(key, "q") {
			continue
		}
		var parsed float64
		if _, err := fmt.Sscanf(value, "%g", &parsed); err == nil && parsed >= 0 && parsed <= 1 {
			q = parsed
		}
	}
	return strings.ToLower(strings.TrimSpace(mediaType)), q
}

// allowedMethods inspects chi's routing context to discover allowed methods.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.Path
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func issuesFromErrors(errs []error) []string {
	issues := make([]string, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		issue := err.Error()
		if detailer, ok := err.(huma.ErrorDetailer); ok {
			if d := detailer.ErrorDetail(); d != nil {
				issue = d.Message
				if d.Location != "" {
					issue = d.Location + ": " + d.Message
				}
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

func messageOrDefault(status int, msg string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func logWithStatus(ctx context.Context, status int, msg string, err error) {
	fields := []zap.Field{zap.Int("status", status)}
	switch {
	case status >= http.StatusInternalServerError:
		applog.LogError(ctx, msg, err, fields...)
	case status >= http.StatusBadRequest:
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		applog.LogWarn(ctx, msg, fields...)
	default:
		applog.LogDebug(ctx, msg, fields...)
	}
}
