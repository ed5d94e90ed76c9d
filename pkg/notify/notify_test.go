package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderKeepsOrder(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	ctx := context.Background()
	rec.Notify(ctx, Toast{Title: "Success", Message: "one", Variant: VariantSuccess})
	rec.Notify(ctx, Toast{Title: "Error", Message: "two", Variant: VariantError})

	want := []Toast{
		{Title: "Success", Message: "one", Variant: VariantSuccess},
		{Title: "Error", Message: "two", Variant: VariantError},
	}
	if diff := cmp.Diff(want, rec.Toasts()); diff != "" {
		t.Fatalf("toasts mismatch (-want +got):\n%s", diff)
	}

	last, ok := rec.Last()
	if !ok || last.Message != "two" {
		t.Fatalf("unexpected last toast: %+v", last)
	}

	rec.Reset()
	if _, ok := rec.Last(); ok {
		t.Fatalf("expected empty recorder after reset")
	}
}

func TestLogNotifierMapsVariantsToLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	n := LogNotifier{Logger: zap.New(core)}
	ctx := context.Background()

	n.Notify(ctx, Toast{Title: "Error", Message: "failed", Variant: VariantError})
	n.Notify(ctx, Toast{Title: "Warning", Message: "full", Variant: VariantWarning})
	n.Notify(ctx, Toast{Title: "Info", Message: "none", Variant: VariantInfo})

	var levels []zapcore.Level
	for _, entry := range logs.All() {
		levels = append(levels, entry.Level)
	}
	want := []zapcore.Level{zapcore.ErrorLevel, zapcore.WarnLevel, zapcore.InfoLevel}
	if diff := cmp.Diff(want, levels); diff != "" {
		t.Fatalf("levels mismatch (-want +got):\n%s", diff)
	}
}

func TestWriterNotifierAndMulti(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rec := &Recorder{}
	n := Multi(WriterNotifier{Out: &buf}, nil, rec)

	n.Notify(context.Background(), Toast{Title: "Info", Message: "No submissions found", Variant: VariantInfo})

	if !strings.Contains(buf.String(), "Info: No submissions found") {
		t.Fatalf("unexpected writer output %q", buf.String())
	}
	if len(rec.Toasts()) != 1 {
		t.Fatalf("expected recorder to receive the toast")
	}
}
