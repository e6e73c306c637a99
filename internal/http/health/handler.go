package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const welcomeMessage = "Welcome to CrispHub GitHub Analytics API"

// Response is the payload for the health endpoint.
type Response struct {
	Status string `json:"status"`
}

// Handler is a plain HTTP handler for the health check endpoint.
func Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Response{Status: "healthy"})
}

// WelcomeData is the response body for GET /.
type WelcomeData struct {
	Message string `json:"message" doc:"Service greeting" example:"Welcome to CrispHub GitHub Analytics API"`
}

// WelcomeOutput is the response wrapper for GET /.
type WelcomeOutput struct {
	Body WelcomeData
}

// Register adds the root liveness route.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service greeting",
		Description: "Returns a fixed welcome message; useful as a liveness check.",
		Tags:        []string{"Health"},
	}, func(context.Context, *struct{}) (*WelcomeOutput, error) {
		return &WelcomeOutput{Body: WelcomeData{Message: welcomeMessage}}, nil
	})
}
