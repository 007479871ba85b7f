// Package logging собирает *slog.Logger сервиса: уровень, формат и
// вывод (stderr или файл).
//
// Текстовый формат повторяет классический вид журнала сервиса:
//
//	[2017.07.20 13:45:01] I request path=/method request_id=...
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// timeLayout — формат времени в текстовом журнале.
const timeLayout = "2006.01.02 15:04:05"

// Config — настройки логгера.
type Config struct {
	Level  Level
	Format Format
	// Output — куда писать журнал. По умолчанию os.Stderr.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{Level: LevelInfo, Format: FormatText, Output: os.Stderr}
}

// New создаёт логгер по конфигурации.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level}))
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       cfg.Level,
		ReplaceAttr: compactAttrs,
	}))
}

// compactAttrs сокращает уровень до одной буквы и переводит время
// в формат журнала.
func compactAttrs(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String(a.Key, "["+a.Value.Time().Format(timeLayout)+"]")
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(a.Key, lvl.String()[:1])
		}
	}
	return a
}

// Nop возвращает логгер, который ничего не пишет.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenOutput открывает файл журнала на дозапись. Пустой путь означает stderr.
// Возвращённую функцию нужно вызвать при остановке сервиса.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

// ParseLevel разбирает уровень без учёта регистра; неизвестное значение — info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ParseFormat разбирает формат; всё, кроме "json", — текст.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}
