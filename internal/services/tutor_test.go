package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"tutor-backend/internal/relevance"
	"tutor-backend/internal/session"
)

type stubCompleter struct {
	reply string
	err   error

	mu      sync.Mutex
	prompts []string
	block   chan struct{}
	started chan struct{}
}

func (c *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	return c.reply, c.err
}

func (c *stubCompleter) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type stubRecorder struct {
	outcomes []string
	keywords [][]string
	err      error
}

func (r *stubRecorder) Record(ctx context.Context, outcome string, keywords []string) error {
	r.outcomes = append(r.outcomes, outcome)
	r.keywords = append(r.keywords, keywords)
	return r.err
}

type eventSink struct {
	mu     sync.Mutex
	events []session.Event
}

func (s *eventSink) Notify(_ context.Context, evt session.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *eventSink) types() []session.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func newTutor(c Completer, r DecisionRecorder, n session.Notifier) *TutorService {
	return NewTutorService(relevance.MustDefault(), c, r, n)
}

func TestTutor_Ask_RelevantQuestionIsForwardedVerbatim(t *testing.T) {
	req := require.New(t)
	completer := &stubCompleter{reply: "Gradient descent minimises a loss."}
	recorder := &stubRecorder{}
	sink := &eventSink{}
	tutor := newTutor(completer, recorder, sink)
	sess := session.NewStore(time.Minute).Create()

	question := "  How does Machine Learning training work?  "
	out, err := tutor.Ask(context.Background(), sess, question)
	req.NoError(err)

	req.Equal(StatusAnswered, out.Status)
	req.Equal([]string{question}, completer.calls())
	req.Equal(session.Entry{Question: question, Answer: "Gradient descent minimises a loss."}, *out.Entry)
	req.Contains(out.MatchedKeywords, "machine learning")
	req.Equal([]session.Entry{*out.Entry}, sess.Log.All())

	req.Equal([]string{StatusAnswered}, recorder.outcomes)
	req.Equal([]session.EventType{session.EventEntryAppended}, sink.types())
	req.False(sess.InFlight())
}

func TestTutor_Ask_IrrelevantQuestionIsRefusedWithoutDispatch(t *testing.T) {
	req := require.New(t)
	completer := &stubCompleter{reply: "should not be used"}
	recorder := &stubRecorder{}
	tutor := newTutor(completer, recorder, nil)
	sess := session.NewStore(time.Minute).Create()

	for _, q := range []string{"What's the weather today?", "Recommend a good novel", "How tall is Everest?"} {
		out, err := tutor.Ask(context.Background(), sess, q)
		req.NoError(err)
		req.Equal(StatusRefused, out.Status)
		req.Equal(RefusalMessage, out.Entry.Answer)
		req.Empty(out.MatchedKeywords)
	}

	req.Empty(completer.calls())
	req.Equal(3, sess.Log.Len())
	req.Equal([]string{StatusRefused, StatusRefused, StatusRefused}, recorder.outcomes)
}

func TestTutor_Ask_BlankQuestionIsNoOp(t *testing.T) {
	req := require.New(t)
	completer := &stubCompleter{reply: "x"}
	recorder := &stubRecorder{}
	sink := &eventSink{}
	tutor := newTutor(completer, recorder, sink)
	sess := session.NewStore(time.Minute).Create()
	sess.Log.Append("q1", "a1")

	for _, q := range []string{"", "   ", "\n\t"} {
		out, err := tutor.Ask(context.Background(), sess, q)
		req.NoError(err)
		req.Equal(StatusSkipped, out.Status)
		req.Nil(out.Entry)
	}

	req.Equal(1, sess.Log.Len())
	req.Empty(completer.calls())
	req.Empty(recorder.outcomes)
	req.Empty(sink.types())
}

func TestTutor_Ask_CompletionFailureLeavesLogUntouched(t *testing.T) {
	req := require.New(t)
	upstream := errors.New("quota exceeded")
	completer := &stubCompleter{err: upstream}
	recorder := &stubRecorder{}
	sink := &eventSink{}
	tutor := newTutor(completer, recorder, sink)
	sess := session.NewStore(time.Minute).Create()
	sess.Log.Append("q1", "a1")

	out, err := tutor.Ask(context.Background(), sess, "explain numpy broadcasting")
	req.Nil(out)

	var cerr *CompletionError
	req.ErrorAs(err, &cerr)
	req.ErrorIs(err, upstream)

	req.Equal(1, sess.Log.Len())
	req.Equal([]string{StatusFailed}, recorder.outcomes)
	req.Empty(sink.types())
	req.False(sess.InFlight())
}

func TestTutor_Ask_RecorderFailureDoesNotFailAsk(t *testing.T) {
	req := require.New(t)
	tutor := newTutor(&stubCompleter{reply: "ok"}, &stubRecorder{err: errors.New("db down")}, nil)
	sess := session.NewStore(time.Minute).Create()

	out, err := tutor.Ask(context.Background(), sess, "what is regression?")
	req.NoError(err)
	req.Equal(StatusAnswered, out.Status)
}

func TestTutor_Ask_OneQuestionInFlightPerSession(t *testing.T) {
	req := require.New(t)
	completer := &stubCompleter{
		reply:   "answer",
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	tutor := newTutor(completer, nil, nil)
	store := session.NewStore(time.Minute)
	sess := store.Create()
	other := store.Create()

	done := make(chan error, 1)
	go func() {
		_, err := tutor.Ask(context.Background(), sess, "first python question")
		done <- err
	}()
	<-completer.started

	_, err := tutor.Ask(context.Background(), sess, "second python question")
	var busy *BusyError
	req.ErrorAs(err, &busy)

	// A different session is not blocked.
	out, err := tutor.Ask(context.Background(), other, "tell me a joke")
	req.NoError(err)
	req.Equal(StatusRefused, out.Status)

	close(completer.block)
	req.NoError(<-done)

	req.Equal([]session.Entry{{Question: "first python question", Answer: "answer"}}, sess.Log.All())
	req.Equal([]string{"first python question"}, completer.calls())
}

func TestTutor_ResetAndTheme(t *testing.T) {
	req := require.New(t)
	sink := &eventSink{}
	tutor := newTutor(&stubCompleter{}, nil, sink)
	sess := session.NewStore(time.Minute).Create()
	sess.Log.Append("q1", "a1")
	sess.Log.Append("q2", "a2")

	tutor.Reset(context.Background(), sess)
	req.Empty(sess.Log.All())

	req.NoError(tutor.SetTheme(context.Background(), sess, "light"))
	req.Equal(session.ThemeLight, sess.Theme())

	// Same theme again does not emit a second event.
	req.NoError(tutor.SetTheme(context.Background(), sess, "light"))

	err := tutor.SetTheme(context.Background(), sess, "solarized")
	var verr *ValidationError
	req.ErrorAs(err, &verr)
	req.Contains(verr.Fields, "theme")
	req.Equal(session.ThemeLight, sess.Theme())

	tutor.End(context.Background(), sess.ID)

	req.Equal([]session.EventType{
		session.EventLogReset,
		session.EventThemeChanged,
		session.EventSessionEnded,
	}, sink.types())
}

func TestSessionJanitor_SweepEndsIdleSessions(t *testing.T) {
	req := require.New(t)
	sink := &eventSink{}
	tutor := newTutor(&stubCompleter{}, nil, sink)
	store := session.NewStore(time.Minute)
	store.Create()
	store.Create()

	j := NewSessionJanitor(store, tutor, time.Hour)
	req.Equal(0, j.sweep(context.Background(), time.Now().UTC()))
	req.Equal(2, j.sweep(context.Background(), time.Now().UTC().Add(time.Hour)))
	req.Equal(0, store.Len())
	req.Equal([]session.EventType{session.EventSessionEnded, session.EventSessionEnded}, sink.types())

	j.Stop()
	j.Stop()
}

func TestExtractText(t *testing.T) {
	req := require.New(t)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Pandas "), genai.Text("is a library.")}}},
			{Content: nil},
		},
	}
	req.Equal("Pandas is a library.", extractText(resp))
	req.Equal("", extractText(&genai.GenerateContentResponse{}))
}
