package logger

import (
	"log/slog"
	"os"
)

// Log starts as the slog default so packages can log before Init runs (tests never call Init).
var Log = slog.Default()

func Init() {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	Log = slog.New(handler)
}
