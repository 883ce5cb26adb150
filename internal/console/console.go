// Package console is the terminal front end of the tutor. It drives one
// session through the same tutor service the HTTP API uses.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"tutor-backend/internal/services"
	"tutor-backend/internal/session"
)

// ErrQuit is returned by Handle when the user asks to leave.
var ErrQuit = errors.New("quit")

type tutorService interface {
	Ask(ctx context.Context, sess *session.Session, question string) (*services.Outcome, error)
	Reset(ctx context.Context, sess *session.Session)
	SetTheme(ctx context.Context, sess *session.Session, theme string) error
}

type keywordLister interface {
	Keywords() []string
}

type Console struct {
	tutor tutorService
	gate  keywordLister
	sess  *session.Session
	out   io.Writer
}

func New(tutor tutorService, gate keywordLister, sess *session.Session, out io.Writer) *Console {
	return &Console{tutor: tutor, gate: gate, sess: sess, out: out}
}

func (c *Console) palette() palette {
	return paletteFor(c.sess.Theme())
}

// Prompt is the coloured input prompt for the current theme.
func (c *Console) Prompt() string {
	return c.palette().prompt.Render("tutor> ")
}

func (c *Console) Welcome() {
	p := c.palette()
	fmt.Fprintln(c.out, p.question.Render("Data Science Tutor"))
	fmt.Fprintln(c.out, p.info.Render("Ask about data science, machine learning, AI or statistics. Type /help for commands."))
}

// Handle processes one line of input. Lines starting with "/" are commands,
// everything else is sent to the tutor unmodified.
func (c *Console) Handle(ctx context.Context, line string) error {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "/") {
		return c.command(ctx, trimmed)
	}
	return c.ask(ctx, line)
}

func (c *Console) ask(ctx context.Context, question string) error {
	outcome, err := c.tutor.Ask(ctx, c.sess, question)
	if err != nil {
		var ce *services.CompletionError
		if errors.As(err, &ce) {
			return fmt.Errorf("the language model did not answer: %w", ce.Err)
		}
		return err
	}
	if outcome.Status == services.StatusSkipped {
		return nil
	}

	p := c.palette()
	style := p.answer
	if outcome.Status == services.StatusRefused {
		style = p.refusal
	}
	fmt.Fprintln(c.out, style.Render(outcome.Entry.Answer))
	if len(outcome.MatchedKeywords) > 0 {
		fmt.Fprintln(c.out, p.info.Render("matched: "+strings.Join(outcome.MatchedKeywords, ", ")))
	}
	return nil
}

func (c *Console) command(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	name := strings.ToLower(parts[0])
	args := parts[1:]

	switch name {
	case "/help", "/?":
		c.help()
	case "/reset", "/clear":
		c.tutor.Reset(ctx, c.sess)
		fmt.Fprintln(c.out, c.palette().info.Render("[history cleared]"))
	case "/theme":
		return c.theme(ctx, args)
	case "/history":
		c.history()
	case "/keywords":
		fmt.Fprintln(c.out, c.palette().info.Render(strings.Join(c.gate.Keywords(), ", ")))
	case "/quit", "/exit", "/q":
		return ErrQuit
	default:
		return fmt.Errorf("unknown command: %s (type /help for commands)", name)
	}
	return nil
}

// theme sets the named theme, or toggles when no argument is given.
func (c *Console) theme(ctx context.Context, args []string) error {
	var next string
	switch {
	case len(args) > 0:
		next = strings.ToLower(args[0])
	case c.sess.Theme() == session.ThemeDark:
		next = string(session.ThemeLight)
	default:
		next = string(session.ThemeDark)
	}

	if err := c.tutor.SetTheme(ctx, c.sess, next); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("unknown theme %q, use dark or light", next)
		}
		return err
	}
	fmt.Fprintln(c.out, c.palette().info.Render("[theme: "+string(c.sess.Theme())+"]"))
	return nil
}

func (c *Console) history() {
	entries := c.sess.Log.All()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, c.palette().info.Render("[no questions yet]"))
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"#", "Question", "Answer"})
	table.SetAutoWrapText(true)
	table.SetColWidth(60)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetRowLine(true)
	for i, e := range entries {
		table.Append([]string{fmt.Sprint(i + 1), e.Question, e.Answer})
	}
	table.Render()
}

func (c *Console) help() {
	p := c.palette()
	fmt.Fprintln(c.out, p.question.Render("Commands"))
	for _, line := range []string{
		"/reset              clear the conversation",
		"/theme [dark|light] switch or toggle the colour theme",
		"/history            show every question and answer so far",
		"/keywords           list the topics the tutor answers",
		"/quit               leave",
	} {
		fmt.Fprintln(c.out, "  "+line)
	}
}

// Error prints err in the current theme's error colour.
func (c *Console) Error(err error) {
	fmt.Fprintln(c.out, c.palette().err.Render("[error] ")+err.Error())
}
