package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TwigBush/sift-go/internal/httpx"
	"github.com/TwigBush/sift-go/internal/rag"
	"github.com/TwigBush/sift-go/internal/trace"
)

// QueryHandler answers a question with only the context the subject is
// authorized to see. Authorization failures surface as errors, never as a
// silently unfiltered answer.
type QueryHandler struct {
	Pipeline *rag.Pipeline
}

func NewQueryHandler(p *rag.Pipeline) *QueryHandler {
	return &QueryHandler{Pipeline: p}
}

type queryRequest struct {
	Subject  string `json:"subject"`
	Question string `json:"question"`
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Question = strings.TrimSpace(req.Question)
	if req.Subject == "" || req.Question == "" {
		httpx.WriteError(w, http.StatusBadRequest, "subject and question are required")
		return
	}

	resp, err := h.Pipeline.Query(r.Context(), req.Subject, req.Question)
	if err != nil {
		slog.Error("query failed", "trace", trace.From(r.Context()), "subject", req.Subject, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "query failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
