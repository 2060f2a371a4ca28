package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "disciplinedash/internal/errors"
)

// Problem is the RFC 7807 body written by middleware that answers a request
// before it reaches a handler
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", apierrors.ProblemContentType)
	w.WriteHeader(p.Status)
	return json.NewEncoder(w).Encode(p)
}

// ProblemFromStatus creates a Problem from an HTTP status code
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	var title, problemType string

	switch status {
	case http.StatusTooManyRequests:
		title = "Too Many Requests"
		problemType = apierrors.TypeRateLimit
	case http.StatusInternalServerError:
		title = "Internal Server Error"
		problemType = apierrors.TypeInternal
	case http.StatusServiceUnavailable:
		title = "Service Unavailable"
		problemType = apierrors.TypeServiceDown
	case http.StatusGatewayTimeout:
		title = "Request Timeout"
		problemType = apierrors.TypeTimeout
	default:
		title = http.StatusText(status)
		problemType = "/errors/unknown"
	}

	return Problem{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// writeProblem answers r with a problem for status
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	ProblemFromStatus(status, detail, GetRequestID(r.Context())).Render(w, r)
}
