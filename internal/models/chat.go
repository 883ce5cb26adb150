package models

import "tutor-backend/internal/session"

// AskRequest is the payload sent to the ask endpoint.
type AskRequest struct {
	Question string `json:"question"`
}

// ThemeRequest switches the session between the dark and light themes.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=dark light"`
}

// SessionResponse is returned when a session starts.
type SessionResponse struct {
	Session session.Snapshot `json:"session"`
	Token   string           `json:"token"`
}
