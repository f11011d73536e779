package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/erazemk/knjiznica/internal/assistant"
)

// maxToolArgs bounds the JSON body of a tool call.
const maxToolArgs = 64 << 10

// AssistantHandler exposes the assistant tool registry over HTTP.
type AssistantHandler struct {
	Registry *assistant.Registry
}

// List handles GET /assistant/tools.
func (h *AssistantHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Registry.Tools())
}

// Invoke handles POST /assistant/tools/{name}. Tool failures are part of
// the Result, so the response is 200 whenever the tool ran; only an unknown
// tool is a 404.
func (h *AssistantHandler) Invoke(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxToolArgs+1))
	if err != nil || len(body) > maxToolArgs {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.Registry.Invoke(r.Context(), r.PathValue("name"), json.RawMessage(body))

	status := http.StatusOK
	if result.Error != nil && result.Error.Kind == assistant.KindUnknownTool {
		status = http.StatusNotFound
	}
	jsonResponse(w, status, result)
}
