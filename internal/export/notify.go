package export

import (
	"context"
	"log/slog"
)

// Level classifies a notice for the consumer.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a user-visible message emitted by the export pipeline:
// validation errors, per-retry notices, and terminal success or failure.
type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier delivers notices to whatever surface the user is watching.
// Passed into the controller by construction; there is no ambient
// notification singleton.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the structured log. It is the default
// when no richer surface is wired in.
type LogNotifier struct {
	Log *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, notice Notice) {
	if n.Log == nil {
		return
	}
	switch notice.Level {
	case LevelError:
		n.Log.Error(notice.Message, "title", notice.Title)
	case LevelWarn:
		n.Log.Warn(notice.Message, "title", notice.Title)
	default:
		n.Log.Info(notice.Message, "title", notice.Title)
	}
}
