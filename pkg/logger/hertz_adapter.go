package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// HertzSlogAdapter routes Hertz framework logs through slog so the
// whole process emits one log stream. It implements hlog.FullLogger.
type HertzSlogAdapter struct {
	logger *slog.Logger
}

// NewHertzSlogAdapter creates the adapter around an slog logger.
func NewHertzSlogAdapter(logger *slog.Logger) *HertzSlogAdapter {
	return &HertzSlogAdapter{logger: logger}
}

func (h *HertzSlogAdapter) Trace(v ...interface{})  { h.logger.Debug(sprint(v...)) }
func (h *HertzSlogAdapter) Debug(v ...interface{})  { h.logger.Debug(sprint(v...)) }
func (h *HertzSlogAdapter) Info(v ...interface{})   { h.logger.Info(sprint(v...)) }
func (h *HertzSlogAdapter) Notice(v ...interface{}) { h.logger.Info(sprint(v...)) }
func (h *HertzSlogAdapter) Warn(v ...interface{})   { h.logger.Warn(sprint(v...)) }
func (h *HertzSlogAdapter) Error(v ...interface{})  { h.logger.Error(sprint(v...)) }
func (h *HertzSlogAdapter) Fatal(v ...interface{})  { h.logger.Error(sprint(v...)) }

func (h *HertzSlogAdapter) Tracef(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Debugf(format string, v ...interface{}) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Infof(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Noticef(format string, v ...interface{}) {
	h.logger.Info(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Warnf(format string, v ...interface{}) {
	h.logger.Warn(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Errorf(format string, v ...interface{}) {
	h.logger.Error(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) Fatalf(format string, v ...interface{}) {
	h.logger.Error(fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.logger.DebugContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.logger.DebugContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.logger.InfoContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.logger.InfoContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.logger.WarnContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.logger.ErrorContext(ctx, fmt.Sprintf(format, v...))
}

func (h *HertzSlogAdapter) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.logger.ErrorContext(ctx, fmt.Sprintf(format, v...))
}

// SetLevel is a no-op; the slog level is fixed at setup time.
func (h *HertzSlogAdapter) SetLevel(level hlog.Level) {}

// SetOutput is a no-op; the slog output is fixed at setup time.
func (h *HertzSlogAdapter) SetOutput(writer io.Writer) {}

func sprint(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
