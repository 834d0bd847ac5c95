package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// LevelBasedMuxHandler пишет все записи в консоль через zap,
// а записи уровня WARN и выше дополнительно в JSON-файл ошибок.
type LevelBasedMuxHandler struct {
	consoleHandler slog.Handler
	fileHandler    slog.Handler
}

func NewLevelBasedMuxHandler(console slog.Handler, file io.Writer) *LevelBasedMuxHandler {
	return &LevelBasedMuxHandler{
		consoleHandler: console,
		fileHandler: slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}),
	}
}

func (h *LevelBasedMuxHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.consoleHandler.Enabled(ctx, level) || h.fileHandler.Enabled(ctx, level)
}

func (h *LevelBasedMuxHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		if err := h.fileHandler.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	if !h.consoleHandler.Enabled(ctx, r.Level) {
		return nil
	}
	return h.consoleHandler.Handle(ctx, r)
}

func (h *LevelBasedMuxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelBasedMuxHandler{
		consoleHandler: h.consoleHandler.WithAttrs(attrs),
		fileHandler:    h.fileHandler.WithAttrs(attrs),
	}
}

func (h *LevelBasedMuxHandler) WithGroup(name string) slog.Handler {
	return &LevelBasedMuxHandler{
		consoleHandler: h.consoleHandler.WithGroup(name),
		fileHandler:    h.fileHandler.WithGroup(name),
	}
}

func newZapLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	conf := zap.NewDevelopmentConfig()
	conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return conf.Build()
}

// NewLogger возвращает логгер и функцию, сбрасывающую буферы перед выходом.
func NewLogger(production bool, errorFile string) (*slog.Logger, func() error, error) {
	zapLogger, err := newZapLogger(production)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать zap логгер: %w", err)
	}

	logFile, err := os.OpenFile(errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		_ = zapLogger.Sync()
		return nil, nil, fmt.Errorf("не удалось открыть файл логов: %w", err)
	}

	handler := NewLevelBasedMuxHandler(zapslog.NewHandler(zapLogger.Core()), logFile)
	cleanup := func() error {
		_ = zapLogger.Sync()
		return logFile.Close()
	}
	return slog.New(handler), cleanup, nil
}

// NewNop: логгер для тестов.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
