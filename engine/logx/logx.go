// Package logx configures the structured logger shared by the import pipeline.
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Extra levels used by the importer alongside slog's built-in ones.
const (
	// LevelVerbose traces per-element decisions such as which search root matched.
	LevelVerbose = slog.Level(-8)
	// LevelLoad reports each external resource read from disk.
	LevelLoad = slog.Level(-2)
	// LevelPerf carries stage timings.
	LevelPerf = slog.Level(2)
)

var levelNames = map[slog.Level]string{
	LevelVerbose: "VERBOSE",
	LevelLoad:    "LOAD",
	LevelPerf:    "PERF",
}

// New returns a text logger writing to w at the given minimum level.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel accepts slog's level names plus verbose, load and perf.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose":
		return LevelVerbose, nil
	case "load":
		return LevelLoad, nil
	case "perf":
		return LevelPerf, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func Verbose(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelVerbose, msg, args...)
}

func Load(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelLoad, msg, args...)
}

func Perf(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelPerf, msg, args...)
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	if name, ok := levelNames[level]; ok {
		a.Value = slog.StringValue(name)
	}
	return a
}
