package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"tutor-backend/internal/middleware"
	"tutor-backend/internal/models"
	"tutor-backend/internal/services"
	"tutor-backend/internal/session"
)

type sessionStore interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string) bool
}

type tutorService interface {
	Ask(ctx context.Context, sess *session.Session, question string) (*services.Outcome, error)
	Reset(ctx context.Context, sess *session.Session)
	SetTheme(ctx context.Context, sess *session.Session, theme string) error
	End(ctx context.Context, sessionID string)
}

type tokenIssuer interface {
	IssueToken(sessionID string) (string, error)
}

type SessionHandler struct {
	store  sessionStore
	tutor  tutorService
	tokens tokenIssuer
}

func NewSessionHandler(store sessionStore, tutor tutorService, tokens tokenIssuer) *SessionHandler {
	return &SessionHandler{
		store:  store,
		tutor:  tutor,
		tokens: tokens,
	}
}

// Start opens a new session with an empty history and the dark theme.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()

	token, err := h.tokens.IssueToken(sess.ID)
	if err != nil {
		h.store.Delete(sess.ID)
		log.Printf("session: failed to issue token: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start session", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.SessionResponse{
		Session: sess.Snapshot(),
		Token:   token,
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if !h.store.Delete(sessionID) {
		writeJSON(w, http.StatusUnauthorized, errorResp("SESSION_EXPIRED", "Session has ended", r))
		return
	}
	h.tutor.End(r.Context(), sessionID)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}

func (h *SessionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	outcome, err := h.tutor.Ask(r.Context(), sess, req.Question)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.tutor.Reset(r.Context(), sess)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *SessionHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req models.ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validateStruct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.tutor.SetTheme(r.Context(), sess, req.Theme); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// resolve loads the session named by the request token. A valid token whose
// session has ended is answered with 401 SESSION_EXPIRED.
func (h *SessionHandler) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.store.Get(middleware.GetSessionID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("SESSION_EXPIRED", "Session has ended, start a new one", r))
		return nil, false
	}
	return sess, true
}
