package console

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"

	"tutor-backend/internal/relevance"
	"tutor-backend/internal/services"
	"tutor-backend/internal/session"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func newTestConsole(t *testing.T, completer *fakeCompleter) (*Console, *session.Session, *bytes.Buffer) {
	t.Helper()
	color.Disable()
	t.Cleanup(func() { color.Enable = true })

	gate := relevance.MustDefault()
	tutor := services.NewTutorService(gate, completer, nil, nil)
	sess := session.NewStore(time.Hour).Create()
	out := &bytes.Buffer{}
	return New(tutor, gate, sess, out), sess, out
}

func TestConsole_AskAnswered(t *testing.T) {
	r := require.New(t)
	completer := &fakeCompleter{reply: "A neural network is layers of weighted sums."}
	c, sess, out := newTestConsole(t, completer)

	r.NoError(c.Handle(context.Background(), "  what is a neural network?"))

	r.Equal([]string{"  what is a neural network?"}, completer.prompts)
	r.Contains(out.String(), "A neural network is layers of weighted sums.")
	r.Contains(out.String(), "matched: ")
	r.Equal(1, sess.Log.Len())
}

func TestConsole_AskRefused(t *testing.T) {
	r := require.New(t)
	completer := &fakeCompleter{reply: "unused"}
	c, sess, out := newTestConsole(t, completer)

	r.NoError(c.Handle(context.Background(), "how tall is everest?"))

	r.Empty(completer.prompts)
	r.Contains(out.String(), services.RefusalMessage)
	r.Equal(1, sess.Log.Len())
}

func TestConsole_BlankInputIsIgnored(t *testing.T) {
	r := require.New(t)
	c, sess, out := newTestConsole(t, &fakeCompleter{})

	r.NoError(c.Handle(context.Background(), "   "))

	r.Empty(out.String())
	r.Zero(sess.Log.Len())
}

func TestConsole_AskFailure(t *testing.T) {
	r := require.New(t)
	c, sess, _ := newTestConsole(t, &fakeCompleter{err: errors.New("quota exceeded")})

	err := c.Handle(context.Background(), "explain pandas")

	r.Error(err)
	r.Contains(err.Error(), "quota exceeded")
	r.Zero(sess.Log.Len())
}

func TestConsole_Reset(t *testing.T) {
	r := require.New(t)
	c, sess, out := newTestConsole(t, &fakeCompleter{reply: "ok"})
	sess.Log.Append("q", "a")

	r.NoError(c.Handle(context.Background(), "/reset"))

	r.Zero(sess.Log.Len())
	r.Contains(out.String(), "history cleared")
}

func TestConsole_Theme(t *testing.T) {
	r := require.New(t)
	c, sess, _ := newTestConsole(t, &fakeCompleter{})
	ctx := context.Background()

	r.NoError(c.Handle(ctx, "/theme light"))
	r.Equal(session.ThemeLight, sess.Theme())

	r.NoError(c.Handle(ctx, "/theme"))
	r.Equal(session.ThemeDark, sess.Theme())

	r.NoError(c.Handle(ctx, "/THEME LIGHT"))
	r.Equal(session.ThemeLight, sess.Theme())

	err := c.Handle(ctx, "/theme neon")
	r.Error(err)
	r.Equal(session.ThemeLight, sess.Theme())
}

func TestConsole_History(t *testing.T) {
	r := require.New(t)
	c, sess, out := newTestConsole(t, &fakeCompleter{})

	r.NoError(c.Handle(context.Background(), "/history"))
	r.Contains(out.String(), "no questions yet")

	sess.Log.Append("what is sql", "a query language")
	out.Reset()
	r.NoError(c.Handle(context.Background(), "/history"))
	r.Contains(out.String(), "what is sql")
	r.Contains(out.String(), "a query language")
}

func TestConsole_KeywordsAndHelp(t *testing.T) {
	r := require.New(t)
	c, _, out := newTestConsole(t, &fakeCompleter{})

	r.NoError(c.Handle(context.Background(), "/keywords"))
	r.Contains(out.String(), "machine learning")

	out.Reset()
	r.NoError(c.Handle(context.Background(), "/help"))
	r.Contains(out.String(), "/theme")
}

func TestConsole_QuitAndUnknown(t *testing.T) {
	r := require.New(t)
	c, _, _ := newTestConsole(t, &fakeCompleter{})

	r.ErrorIs(c.Handle(context.Background(), "/quit"), ErrQuit)
	r.ErrorIs(c.Handle(context.Background(), "/exit"), ErrQuit)

	err := c.Handle(context.Background(), "/bogus")
	r.Error(err)
	r.NotErrorIs(err, ErrQuit)
}

func TestPaletteFor_UnknownFallsBackToDark(t *testing.T) {
	require.Equal(t, palettes[session.ThemeDark], paletteFor(session.Theme("neon")))
}
