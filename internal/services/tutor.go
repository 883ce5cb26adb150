package services

import (
	"context"
	"log"
	"strings"

	"tutor-backend/internal/session"
)

// RefusalMessage is the answer given to questions outside the tutor's domain.
const RefusalMessage = "I do respect and appreciate your curiosity but sorry it's not my expertise so I'm out."

// Ask outcomes, also used as decision statistics outcomes.
const (
	StatusAnswered = "answered"
	StatusRefused  = "refused"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Completer is the hosted text-generation capability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gate decides whether a question is in the tutor's domain.
type Gate interface {
	Matches(text string) []string
}

// DecisionRecorder counts gate outcomes. Failures are logged, never surfaced.
type DecisionRecorder interface {
	Record(ctx context.Context, outcome string, keywords []string) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, []string) error { return nil }

// Outcome describes what a submission did to the session.
type Outcome struct {
	Status          string         `json:"status"`
	Entry           *session.Entry `json:"entry,omitempty"`
	MatchedKeywords []string       `json:"matched_keywords,omitempty"`
}

type TutorService struct {
	gate      Gate
	completer Completer
	recorder  DecisionRecorder
	notifier  session.Notifier
}

func NewTutorService(gate Gate, completer Completer, recorder DecisionRecorder, notifier session.Notifier) *TutorService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if notifier == nil {
		notifier = session.NopNotifier{}
	}
	return &TutorService{
		gate:      gate,
		completer: completer,
		recorder:  recorder,
		notifier:  notifier,
	}
}

// Ask runs one question through the gate and, when accepted, the model.
// Blank questions are ignored. Only one question per session may be in flight.
func (s *TutorService) Ask(ctx context.Context, sess *session.Session, question string) (*Outcome, error) {
	if strings.TrimSpace(question) == "" {
		return &Outcome{Status: StatusSkipped}, nil
	}

	if !sess.TryBegin() {
		return nil, &BusyError{Message: "A question is already being answered for this session"}
	}
	defer sess.Done()

	matched := s.gate.Matches(question)

	status := StatusRefused
	answer := RefusalMessage
	if len(matched) > 0 {
		reply, err := s.completer.Complete(ctx, question)
		if err != nil {
			log.Printf("tutor: completion failed for session %s: %v", sess.ID, err)
			s.record(ctx, StatusFailed, matched)
			return nil, &CompletionError{Err: err}
		}
		status = StatusAnswered
		answer = reply
	}

	sess.Log.Append(question, answer)
	entry := session.Entry{Question: question, Answer: answer}

	s.record(ctx, status, matched)
	s.notifier.Notify(ctx, session.Event{
		Type:      session.EventEntryAppended,
		SessionID: sess.ID,
		Payload:   entry,
	})

	return &Outcome{Status: status, Entry: &entry, MatchedKeywords: matched}, nil
}

func (s *TutorService) Reset(ctx context.Context, sess *session.Session) {
	sess.Log.Reset()
	s.notifier.Notify(ctx, session.Event{Type: session.EventLogReset, SessionID: sess.ID})
}

func (s *TutorService) SetTheme(ctx context.Context, sess *session.Session, theme string) error {
	t, err := session.ParseTheme(theme)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"theme": "theme must be dark or light"}}
	}
	if sess.Theme() == t {
		return nil
	}

	sess.SetTheme(t)
	s.notifier.Notify(ctx, session.Event{
		Type:      session.EventThemeChanged,
		SessionID: sess.ID,
		Payload:   map[string]string{"theme": string(t)},
	})
	return nil
}

// End announces that a session is gone. The caller removes it from the store.
func (s *TutorService) End(ctx context.Context, sessionID string) {
	s.notifier.Notify(ctx, session.Event{Type: session.EventSessionEnded, SessionID: sessionID})
}

func (s *TutorService) record(ctx context.Context, outcome string, keywords []string) {
	if err := s.recorder.Record(ctx, outcome, keywords); err != nil {
		log.Printf("tutor: failed to record %s decision: %v", outcome, err)
	}
}
