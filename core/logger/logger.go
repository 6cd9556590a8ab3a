package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	instance *slog.Logger
	level    = new(slog.LevelVar)
	once     sync.Once
)

func get() *slog.Logger {
	once.Do(func() {
		instance = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	})
	return instance
}

// SetLevel accepts debug, info, warn or error; anything else means info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn", "warning":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func Debug(msg string, kv ...any) {
	get().Debug(msg, normalize(kv)...)
}

func Info(msg string, kv ...any) {
	get().Info(msg, normalize(kv)...)
}

func Warn(msg string, kv ...any) {
	get().Warn(msg, normalize(kv)...)
}

func Error(msg string, kv ...any) {
	get().Error(msg, normalize(kv)...)
}

// normalize lets callers pass a bare error (logger.Error("Repo:Get", err))
// next to ordinary key/value pairs.
func normalize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv)+1)
	for i := 0; i < len(kv); i++ {
		switch v := kv[i].(type) {
		case error:
			out = append(out, "error", v.Error())
		case string:
			if i+1 < len(kv) {
				out = append(out, v, kv[i+1])
				i++
			} else {
				out = append(out, "detail", v)
			}
		default:
			out = append(out, "detail", v)
		}
	}
	return out
}
