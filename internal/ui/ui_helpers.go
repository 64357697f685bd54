package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/jose-valero/lfg-bot/internal/lfg"
)

// mention renders a player id (a Discord user id) as a ping.
func mention(p lfg.PlayerID) string {
	if p == "" {
		return "—"
	}
	return "<@" + string(p) + ">"
}

func mentions(ps []lfg.PlayerID) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, mention(p))
	}
	return out
}

// relative lets the Discord client count down to t.
func relative(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// humanWait is the time a ticket has been queued.
func humanWait(now, since time.Time) string {
	if since.IsZero() {
		return "?"
	}
	d := now.Sub(since)
	if d < time.Minute {
		return "<1 min"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func answerIcon(a lfg.Answer) string {
	switch a {
	case lfg.AnswerAgree:
		return "✅"
	case lfg.AnswerDeny:
		return "❌"
	default:
		return "⏳"
	}
}

func safe(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" {
		return "—"
	}
	return t
}

func bulletList(items []string, max int) string {
	if len(items) == 0 {
		return "—"
	}
	more := 0
	if max > 0 && len(items) > max {
		more = len(items) - max
		items = items[:max]
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "• %s\n", it)
	}
	if more > 0 {
		fmt.Fprintf(&b, "… and %d more\n", more)
	}
	return strings.TrimRight(b.String(), "\n")
}

func quoteBlock(s string) string {
	if s == "" {
		return "> —"
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "> " + lines[i]
	}
	return strings.Join(lines, "\n")
}
