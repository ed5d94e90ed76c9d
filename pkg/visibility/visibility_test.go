package visibility

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	cases := map[string]Policy{
		"":            FailOpen,
		"show":        FailOpen,
		"bogus":       FailOpen,
		"hide":        FailClosed,
		" Closed ":    FailClosed,
		"fail-closed": FailClosed,
	}
	for in, want := range cases {
		if got := ParsePolicy(in); got != want {
			t.Fatalf("ParsePolicy(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolverAppliesPolicyOnFailure(t *testing.T) {
	t.Parallel()

	broken := EvaluatorFunc(func(string, string, Context) (bool, error) {
		return false, errors.New("unknown field")
	})
	core, logs := observer.New(zap.WarnLevel)

	open := Resolver{Evaluator: broken, Rules: Rules{"reporterName": "nope"}, Policy: FailOpen, Logger: zap.New(core)}
	if !open.Visible("reporterName", nil) {
		t.Fatalf("fail-open must show the field")
	}
	closed := open
	closed.Policy = FailClosed
	if closed.Visible("reporterName", nil) {
		t.Fatalf("fail-closed must hide the field")
	}
	if logs.Len() != 2 {
		t.Fatalf("expected one warning per failure, got %d", logs.Len())
	}
	if !open.Visible("reporterEmail", nil) {
		t.Fatalf("fields without a rule are always visible")
	}
}

func TestResolverUsesEvaluatorResult(t *testing.T) {
	t.Parallel()

	var gotField, gotRule string
	eval := EvaluatorFunc(func(field, rule string, ctx Context) (bool, error) {
		gotField, gotRule = field, rule
		return ctx.Values["isAnonymous"] == false, nil
	})
	r := Resolver{Evaluator: eval, Rules: DefaultRules()}

	if r.Visible("reporterPhone", map[string]any{"isAnonymous": true}) {
		t.Fatalf("expected hidden")
	}
	if gotField != "reporterPhone" || gotRule != "!formData.isAnonymous" {
		t.Fatalf("unexpected evaluator inputs %q %q", gotField, gotRule)
	}
}
