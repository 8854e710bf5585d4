package present

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"callroot/internal/callhierarchy"
	"callroot/internal/slogutil"
)

// ConsoleNotifier writes notifications to a terminal stream and the log
type ConsoleNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewConsoleNotifier creates a notifier writing to w, usually os.Stderr
func NewConsoleNotifier(w io.Writer, logger *slog.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{w: w, logger: slogutil.OrDiscard(logger)}
}

// SendNotification implements callhierarchy.Notifier
func (n *ConsoleNotifier) SendNotification(message string, severity callhierarchy.Severity) {
	n.logger.Log(context.Background(), slogLevel(severity), "Notification", "message", message)

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s: %s\n", severity, message)
}

func slogLevel(s callhierarchy.Severity) slog.Level {
	switch s {
	case callhierarchy.SeverityWarning:
		return slog.LevelWarn
	case callhierarchy.SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
