package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Variant is the severity of a toast.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantInfo    Variant = "info"
	VariantWarning Variant = "warning"
	VariantError   Variant = "error"
)

// Toast is an ephemeral user-facing notice.
type Toast struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Variant Variant `json:"variant"`
}

// Notifier renders toasts. Return values are never consumed by callers, so
// implementations swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, toast Toast)

// Notify calls the underlying function.
func (fn NotifierFunc) Notify(ctx context.Context, toast Toast) {
	fn(ctx, toast)
}

// Nop discards every toast.
var Nop Notifier = NotifierFunc(func(context.Context, Toast) {})

// Recorder keeps every toast it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify records toast.
func (r *Recorder) Notify(_ context.Context, toast Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, toast)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the most recent toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Reset drops recorded toasts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.toasts = nil
	r.mu.Unlock()
}

// LogNotifier writes toasts to a zap logger, mapping variants onto levels.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs toast.
func (n LogNotifier) Notify(_ context.Context, toast Toast) {
	if n.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("title", toast.Title),
		zap.String("variant", string(toast.Variant)),
	}
	switch toast.Variant {
	case VariantError:
		n.Logger.Error(toast.Message, fields...)
	case VariantWarning:
		n.Logger.Warn(toast.Message, fields...)
	default:
		n.Logger.Info(toast.Message, fields...)
	}
}

// WriterNotifier prints toasts as single lines, used by the CLI.
type WriterNotifier struct {
	Out io.Writer
}

var variantPrefix = map[Variant]string{
	VariantSuccess: "\033[32m✓\033[0m",
	VariantInfo:    "\033[36mi\033[0m",
	VariantWarning: "\033[33m⚠\033[0m",
	VariantError:   "\033[31m✗\033[0m",
}

// Notify prints toast.
func (n WriterNotifier) Notify(_ context.Context, toast Toast) {
	if n.Out == nil {
		return
	}
	prefix, ok := variantPrefix[toast.Variant]
	if !ok {
		prefix = "-"
	}
	_, _ = fmt.Fprintf(n.Out, "%s %s: %s\n", prefix, toast.Title, toast.Message)
}

// Multi fans a toast out to several notifiers.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, toast Toast) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(ctx, toast)
			}
		}
	})
}
