// Package cli is the interactive chat front end.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tripmate/internal/models/response_models"
	"tripmate/internal/planguard"
	"tripmate/internal/services"
)

const (
	Banner = `tripmate - type "exit" to quit. Commands: /reset /save /load /stats`
	Prompt = "you> "

	// MaxLineBytes bounds one input line; pasted itineraries can be long.
	MaxLineBytes = 1 << 20
)

type Options struct {
	// SessionKey selects the stored history; empty means the default slot.
	SessionKey string
	// Raw prints the assistant's JSON instead of rendering it.
	Raw bool
}

// REPL reads one line at a time and runs it as a turn. A turn is finished,
// and the history saved, before the next line is read.
type REPL struct {
	chat       services.ChatServiceInterface
	sessions   services.SessionServiceInterface
	guardrails services.GuardrailServiceInterface
	opts       Options
	logger     *zap.Logger

	in  *bufio.Scanner
	out io.Writer

	mu      sync.Mutex
	session *services.Session
}

func NewREPL(
	chat services.ChatServiceInterface,
	sessions services.SessionServiceInterface,
	guardrails services.GuardrailServiceInterface,
	opts Options,
	logger *zap.Logger,
) *REPL {
	return NewREPLWithIO(chat, sessions, guardrails, opts, logger, os.Stdin, os.Stdout)
}

func NewREPLWithIO(
	chat services.ChatServiceInterface,
	sessions services.SessionServiceInterface,
	guardrails services.GuardrailServiceInterface,
	opts Options,
	logger *zap.Logger,
	in io.Reader,
	out io.Writer,
) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	return &REPL{
		chat:       chat,
		sessions:   sessions,
		guardrails: guardrails,
		opts:       opts,
		logger:     logger,
		in:         scanner,
		out:        out,
	}
}

// Run loads the session and serves input until exit or EOF. The history is
// saved on the way out.
func (r *REPL) Run(ctx context.Context) error {
	session := r.sessions.Load(ctx, r.opts.SessionKey)
	r.mu.Lock()
	r.session = session
	r.mu.Unlock()
	if n := r.session.Len(); n > 0 {
		r.printf("(loaded %d items from %s)\n", n, r.location())
	}
	r.println(Banner)

	for {
		r.printf("%s", Prompt)
		if !r.in.Scan() {
			if err := r.in.Err(); err != nil {
				r.save(ctx)
				return fmt.Errorf("input error: %w", err)
			}
			r.println()
			break
		}

		text := strings.TrimSpace(r.in.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") {
			break
		}
		if r.command(ctx, text) {
			continue
		}

		r.turn(ctx, text)
	}

	r.save(ctx)
	return nil
}

// Flush saves the current history. It is safe to call while a turn is in
// progress.
func (r *REPL) Flush(ctx context.Context) error {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	if session == nil {
		return nil
	}
	r.println("\n(^C) saving session")
	return r.sessions.Save(ctx, session)
}

func (r *REPL) command(ctx context.Context, text string) bool {
	switch strings.ToLower(text) {
	case "/reset":
		if err := r.sessions.Reset(ctx, r.session); err != nil {
			r.printf("(error: %v)\n", err)
			return true
		}
		r.println("(history reset)")
	case "/save":
		if err := r.sessions.Save(ctx, r.session); err != nil {
			r.printf("(error: %v)\n", err)
			return true
		}
		r.printf("(saved to %s)\n", r.location())
	case "/load":
		n := r.sessions.Reload(ctx, r.session)
		r.printf("(loaded %d items from %s)\n", n, r.location())
	case "/stats":
		r.stats(ctx)
	default:
		return false
	}
	return true
}

func (r *REPL) turn(ctx context.Context, text string) {
	reply, err := r.chat.ProcessTurn(ctx, r.session, text, func(check planguard.Check) {
		r.println(repairNotice(check))
	})
	if err != nil {
		r.logger.Warn("turn failed", zap.Error(err))
		r.printf("(error: %v)\n", err)
		r.save(ctx)
		return
	}

	r.render(reply)
	r.save(ctx)
}

func (r *REPL) save(ctx context.Context) {
	if r.session == nil {
		return
	}
	if err := r.sessions.Save(ctx, r.session); err != nil {
		r.logger.Error("history save failed", zap.String("location", r.location()), zap.Error(err))
		r.printf("(error: %v)\n", err)
	}
}

func (r *REPL) stats(ctx context.Context) {
	if r.guardrails == nil {
		r.println("(guardrails not configured)")
		return
	}
	stats, err := r.guardrails.Stats(ctx)
	if err != nil {
		r.printf("(error: %v)\n", err)
		return
	}
	r.printf("guardrails: %d checked, %d blocked, %d passed\n", stats.Total, stats.Blocked, stats.Passed)
	for _, entry := range stats.RecentBlocks {
		r.printf("  blocked [%s] %s: %s\n", entry.Validation.Category, entry.Timestamp, entry.Validation.Reason)
	}
}

func (r *REPL) render(reply *services.TurnReply) {
	switch {
	case r.opts.Raw || reply.Response == nil:
		r.println("assistant>", reply.Output)
	default:
		r.println("assistant>", renderResponse(reply.Response))
	}
	for _, c := range reply.Citations {
		title := c.Title
		if title == "" {
			title = c.URL
		}
		r.printf("source> %s — %s\n", title, c.URL)
	}
}

func (r *REPL) location() string {
	return r.sessions.Location(r.opts.SessionKey)
}

func (r *REPL) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) println(args ...interface{}) {
	fmt.Fprintln(r.out, args...)
}

func repairNotice(check planguard.Check) string {
	if check.TargetDays > 0 {
		return fmt.Sprintf("(auto-repair: %s → %d days)", check.Reason, check.TargetDays)
	}
	return fmt.Sprintf("(auto-repair: %s)", check.Reason)
}

// renderResponse formats the markdown body followed by any itinerary days.
func renderResponse(resp *response_models.TripPlanResponse) string {
	var b strings.Builder
	b.WriteString(resp.MarkdownValue())

	for _, card := range resp.ItineraryCards() {
		b.WriteString("\n\n")
		b.WriteString(card.Title)
		writeSlot(&b, "morning", card.Morning)
		writeSlot(&b, "afternoon", card.Afternoon)
		writeSlot(&b, "evening", card.Evening)

		keys := make([]string, 0, len(card.Extra))
		for k := range card.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeSlot(&b, k, card.Extra[k])
		}
	}
	return b.String()
}

func writeSlot(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "\n  %s: %s", name, value)
}
