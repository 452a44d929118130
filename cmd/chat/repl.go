package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/internal/service/playback"
)

type feedbackSubmitter interface {
	SubmitFeedback(ctx context.Context, text string) (chat.FeedbackResult, error)
}

type finisher interface {
	Finish()
}

type repl struct {
	in       io.Reader
	out      io.Writer
	engine   *orchestrator.Orchestrator
	sink     finisher
	feedback feedbackSubmitter
}

const helpText = `Commands:
  /lang <code>       switch language (%s)
  /feedback <text>   send feedback
  /quit              leave
`

func (r *repl) run(ctx context.Context) error {
	r.welcome()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.out, "you> ")
		var line string
		select {
		case <-ctx.Done():
			r.engine.Cancel()
			fmt.Fprintln(r.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				r.engine.Cancel()
				return nil
			}
			line = strings.TrimSpace(l)
		}

		quit, err := r.handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handle executes one input line and reports whether the session ends.
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
		return false, nil
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintf(r.out, helpText, strings.Join(r.engine.Locale().Catalog().Codes(), ", "))
		return false, nil
	case "/lang":
		if err := r.engine.Locale().SetLanguage(arg); err != nil {
			fmt.Fprintf(r.out, "unknown language %q, available: %s\n", arg, strings.Join(r.engine.Locale().Catalog().Codes(), ", "))
			return false, nil
		}
		r.welcome()
		return false, nil
	case "/feedback":
		r.sendFeedback(ctx, arg)
		return false, nil
	}

	outcome := r.engine.Submit(ctx, line)
	if outcome.Playback != nil {
		if err := outcome.Playback.Wait(ctx); err != nil && !errors.Is(err, playback.ErrCancelled) && ctx.Err() == nil {
			return false, err
		}
	}
	r.sink.Finish()
	log.Debug().Str("component", "repl").Str("status", string(outcome.Status)).Msg("query handled")
	return false, nil
}

func (r *repl) sendFeedback(ctx context.Context, text string) {
	result, err := r.feedback.SubmitFeedback(ctx, text)
	if err != nil {
		log.Debug().Err(err).Str("component", "repl").Msg("feedback not sent")
		fmt.Fprintln(r.out, feedbackError(err))
		return
	}
	fmt.Fprintln(r.out, result.Message)
}

func (r *repl) welcome() {
	ui := r.engine.Locale().UI()
	fmt.Fprintln(r.out, ui["welcome_message"])
	if desc := ui["chatbot_description"]; desc != "" {
		fmt.Fprintln(r.out, desc)
	}
}
