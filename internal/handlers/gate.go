package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tutor-backend/internal/models"
)

type relevanceGate interface {
	IsRelevant(text string) bool
	Matches(text string) []string
	Keywords() []string
}

type gateStatsRepository interface {
	List(ctx context.Context) ([]models.GateDecision, error)
}

type GateHandler struct {
	gate  relevanceGate
	stats gateStatsRepository
}

// NewGateHandler wires the gate endpoints. stats may be nil when no database
// is configured.
func NewGateHandler(gate relevanceGate, stats gateStatsRepository) *GateHandler {
	return &GateHandler{gate: gate, stats: stats}
}

func (h *GateHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.KeywordsResponse{Keywords: h.gate.Keywords()})
}

// Check classifies text without touching any session.
func (h *GateHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req models.RelevanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	matched := h.gate.Matches(req.Text)
	if matched == nil {
		matched = []string{}
	}
	writeJSON(w, http.StatusOK, models.RelevanceResponse{
		Relevant:        h.gate.IsRelevant(req.Text),
		MatchedKeywords: matched,
	})
}

func (h *GateHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STATS_DISABLED", "Decision statistics need DATABASE_URL", r))
		return
	}

	decisions, err := h.stats.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load statistics", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"decisions": decisions})
}
