package gateway

import (
	"encoding/json"
	"net/http"
)

// CallRequest is the body of POST /mcp.
type CallRequest struct {
	Method string     `json:"method"`
	Params CallParams `json:"params"`
}

// CallParams identifies the tool and its arguments for tools/call.
// Name is unused for tools/list.
type CallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ContentItem is one element of a successful response envelope.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResponse is the success envelope: {"content":[{"type":"text","text":...}]}.
type CallResponse struct {
	Content []ContentItem `json:"content"`
}

// ErrorResponse carries a handled failure. Tool-level failures ship
// with HTTP 200; transport-level failures (bad JSON, auth, rate limit)
// use their own status codes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, text string) {
	writeJSON(w, http.StatusOK, CallResponse{
		Content: []ContentItem{{Type: "text", Text: text}},
	})
}

func writeToolError(w http.ResponseWriter, msg string) {
	// Handled tool-level errors are data, not transport failures.
	writeJSON(w, http.StatusOK, ErrorResponse{Error: msg})
}
