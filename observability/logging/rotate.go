package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupRotating is Setup plus file-rotation: log lines go to both
// stdout and a lumberjack-managed file, sized and retained per the
// LOG_FILE / MAX_LOG_SIZE / LOG_BACKUP_COUNT environment variables.
func SetupRotating(service, env, logFile string, maxSizeBytes, backupCount int) *slog.Logger {
	var writer io.Writer = os.Stdout
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    megabytes(maxSizeBytes),
			MaxBackups: backupCount,
			Compress:   false,
		}
		writer = io.MultiWriter(os.Stdout, rotator)
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		AddSource: false,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				return slog.Attr{Key: "timestamp", Value: attr.Value}
			case slog.LevelKey:
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: attr.Value}
			}
			if len(groups) == 0 && attr.Value.Kind() == slog.KindString && !IsAllowlisted(attr.Key) {
				return slog.String(attr.Key, MaskValue(attr.Value.String()))
			}
			return attr
		},
	})

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(service))}
	if env = strings.TrimSpace(env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	withArgs := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		withArgs = append(withArgs, attr)
	}

	base := slog.New(handler).With(withArgs...)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(handler.WithAttrs(attrs), slog.LevelInfo)
	stdBridge.SetFlags(0)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}

// megabytes converts a byte count (as MAX_LOG_SIZE is specified) into
// the whole-megabyte unit lumberjack.Logger.MaxSize expects, rounding
// up: a cap that is not a whole number of megabytes is enlarged to the
// next megabyte (minimum 1), and a non-positive count yields 10.
func megabytes(bytes int) int {
	const oneMB = 1024 * 1024
	if bytes <= 0 {
		return 10
	}
	mb := bytes / oneMB
	if bytes%oneMB != 0 {
		mb++
	}
	if mb < 1 {
		mb = 1
	}
	return mb
}
