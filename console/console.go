// Package console is a line-oriented front end for a chat.Controller. Each
// line read is submitted as one turn and the REPL blocks until it completes.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tailored-agentic-units/supportchat/chat"
)

// Controller is the part of chat.Controller the console drives.
type Controller interface {
	Submit(ctx context.Context, text string) (*chat.Turn, error)
	SessionID() string
}

// Option configures a Console.
type Option func(*Console)

// WithAssistantName sets the label printed before agent replies.
func WithAssistantName(name string) Option {
	return func(c *Console) { c.assistant = name }
}

// WithNoColor disables ANSI colors regardless of the terminal.
func WithNoColor() Option {
	return func(c *Console) {
		for _, col := range []*color.Color{c.userColor, c.agentColor, c.errColor, c.titleColor} {
			col.DisableColor()
		}
	}
}

// Console reads utterances from in and writes the exchange to out.
type Console struct {
	ctrl      Controller
	in        io.Reader
	out       io.Writer
	assistant string

	userColor  *color.Color
	agentColor *color.Color
	errColor   *color.Color
	titleColor *color.Color
}

// New creates a Console bound to ctrl.
func New(ctrl Controller, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		ctrl:       ctrl,
		in:         in,
		out:        out,
		assistant:  "Ayesha",
		userColor:  color.New(color.FgGreen, color.Bold),
		agentColor: color.New(color.FgCyan, color.Bold),
		errColor:   color.New(color.FgRed),
		titleColor: color.New(color.FgMagenta, color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run loops until in is exhausted, the user types exit or quit, or ctx ends.
// Reaching the end of input is not an error.
func (c *Console) Run(ctx context.Context) error {
	c.titleColor.Fprintf(c.out, "%s · Shopping Assistant\n", c.assistant)
	fmt.Fprintf(c.out, "Session %s. Type 'exit' or 'quit' to leave.\n\n", c.ctrl.SessionID())

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.userColor.Fprint(c.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := scanner.Text()

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			return nil
		}

		turn, err := c.ctrl.Submit(ctx, line)
		switch {
		case errors.Is(err, chat.ErrBlankInput), errors.Is(err, chat.ErrBusy):
			continue
		case err != nil:
			return err
		}

		outcome, err := turn.Wait(ctx)
		if err != nil {
			turn.Cancel()
			return err
		}

		if !outcome.OK() {
			c.errColor.Fprintln(c.out, outcome.Notice)
			fmt.Fprintln(c.out)
			continue
		}

		c.agentColor.Fprintf(c.out, "%s [%s]: ", c.assistant, outcome.Agent.Timestamp.Local().Format("15:04"))
		fmt.Fprintln(c.out, outcome.Agent.Content)
		fmt.Fprintln(c.out)
	}
}
