package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/learnnova/learnnova-cli/internal/model/chat"
)

const titleColumnLimit = 40

// WelcomeBanner renders the boxed banner shown when the chat session starts.
func WelcomeBanner(title, subtitle string) string {
	inner := Styles.Title.Render(title)
	if subtitle != "" {
		inner += "\n" + Styles.Dim.Render(subtitle)
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 2)
	return box.Render(inner)
}

// RenderThreadTable lays out threads as an indexed table, most recently
// updated first. The current thread is highlighted and marked with an
// asterisk; indexes are what the chat REPL's /switch accepts.
func RenderThreadTable(threads []chat.Thread, currentID chat.ThreadID) string {
	if len(threads) == 0 {
		return Styles.Dim.Render("no threads yet")
	}

	var b strings.Builder
	b.WriteString(Styles.Bold.Render(fmt.Sprintf("    %-3s %-*s %5s  %-16s %s",
		"#", titleColumnLimit, "TITLE", "MSGS", "UPDATED", "ID")))
	b.WriteByte('\n')

	for i, t := range threads {
		marker := " "
		if t.ID == currentID {
			marker = "*"
		}
		row := fmt.Sprintf("  %s %-3d %-*s %5d  %-16s %s",
			marker, i+1,
			titleColumnLimit, truncate(t.Title, titleColumnLimit),
			len(t.Messages),
			FormatUpdated(t.UpdatedAt),
			t.ID)
		if t.ID == currentID {
			row = Styles.Title.Render(row)
		}
		b.WriteString(row)
		if i < len(threads)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatUpdated renders an epoch-millisecond timestamp for table output.
func FormatUpdated(millis int64) string {
	if millis == 0 {
		return "-"
	}
	return time.UnixMilli(millis).Format("2006-01-02 15:04")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
