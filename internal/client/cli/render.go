package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/nutrisync/internal/client/models"
	"github.com/dustin/go-humanize"
)

var (
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	bold   = lipgloss.NewStyle().Bold(true)
)

func renderStatus(s models.SyncStatus) string {
	switch s.State {
	case models.SyncSyncing:
		return cyan.Render(s.String())
	case models.SyncSynced:
		return green.Render(s.String())
	case models.SyncErrored:
		return red.Render(s.String())
	default:
		return gray.Render(s.String())
	}
}

func renderOnline(online bool) string {
	if online {
		return green.Render("online")
	}
	return yellow.Render("offline")
}

func renderQueueStatus(e *models.QueueEntry) string {
	switch e.Status {
	case models.StatusCompleted:
		return green.Render(string(e.Status))
	case models.StatusFailed:
		return red.Render(fmt.Sprintf("%s (%d)", e.Status, e.RetryCount))
	default:
		return yellow.Render(string(e.Status))
	}
}

// writeEntries prints one line per queue entry, newest activity last.
func writeEntries(w io.Writer, entries []*models.QueueEntry, now time.Time) {
	if len(entries) == 0 {
		fmt.Fprintln(w, gray.Render("queue is empty"))
		return
	}

	for _, e := range entries {
		line := []string{
			gray.Render(fmt.Sprintf("#%d", e.ID)),
			bold.Render(string(e.Operation)),
			fmt.Sprintf("%s/%s", e.EntityType, e.EntityID),
			renderQueueStatus(e),
			gray.Render(humanize.RelTime(e.CreatedAt, now, "ago", "from now")),
		}
		if len(e.Payload) > 0 {
			line = append(line, gray.Render(humanize.Bytes(uint64(len(e.Payload)))))
		}
		if e.LastError != "" {
			line = append(line, red.Render(fmt.Sprintf("[%s] %s", e.ErrorKind, e.LastError)))
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}
}

func writeField(w io.Writer, name, value string) {
	fmt.Fprintf(w, "%s %s\n", bold.Render(fmt.Sprintf("%-10s", name+":")), value)
}
