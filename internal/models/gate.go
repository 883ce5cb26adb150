package models

import "time"

// GateDecision is a per-keyword counter of relevance gate outcomes.
type GateDecision struct {
	Keyword    string    `json:"keyword"`
	Outcome    string    `json:"outcome"` // "answered" | "refused" | "failed"
	Count      int64     `json:"count"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type RelevanceRequest struct {
	Text string `json:"text"`
}

type RelevanceResponse struct {
	Relevant        bool     `json:"relevant"`
	MatchedKeywords []string `json:"matched_keywords"`
}

type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}
