package expr

import (
	"errors"
	"testing"

	"github.com/goliatone/go-reportform/pkg/visibility"
)

func TestEvaluatorFormDataReferences(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]any{"isAnonymous": false, "consentToContact": true}

	cases := []struct {
		rule string
		want bool
	}{
		{rule: "!formData.isAnonymous", want: true},
		{rule: "formData.consentToContact && !formData.isAnonymous", want: true},
		{rule: "consentToContact && isAnonymous", want: false},
		{rule: "isAnonymous || consentToContact", want: true},
		{rule: "!(isAnonymous || !consentToContact)", want: true},
		{rule: "true && !false", want: true},
	}
	for _, tc := range cases {
		got, err := eval.Eval("field", tc.rule, visibility.Context{Values: values})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.rule, err)
		}
		if got != tc.want {
			t.Fatalf("%q: want %v, got %v", tc.rule, tc.want, got)
		}
	}
}

func TestEvaluatorTruthinessFollowsJSONValue(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]any{"empty": "", "space": " ", "zero": 0, "nothing": nil, "set": "x"}

	for rule, want := range map[string]bool{
		"empty":   false,
		"space":   true,
		"zero":    false,
		"nothing": false,
		"set":     true,
	} {
		got, err := eval.Eval("field", rule, visibility.Context{Values: values})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", rule, err)
		}
		if got != want {
			t.Fatalf("%q: want %v, got %v", rule, want, got)
		}
	}
}

func TestEvaluatorComparisons(t *testing.T) {
	t.Parallel()

	eval := New()
	values := map[string]any{"preferredContactMethod": "Email", "isAnonymous": true, "count": 3}

	cases := map[string]bool{
		`formData.preferredContactMethod == "Email"`:   true,
		`preferredContactMethod != 'Phone'`:            true,
		`isAnonymous === true`:                         true,
		`isAnonymous == false`:                         false,
		`count == 3 && preferredContactMethod != null`: true,
		`missing == null`:                              true,
	}
	for rule, want := range cases {
		got, err := eval.Eval("field", rule, visibility.Context{Values: values})
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", rule, err)
		}
		if got != want {
			t.Fatalf("%q: want %v, got %v", rule, want, got)
		}
	}
}

func TestEvaluatorUnknownFieldIsExplicitError(t *testing.T) {
	t.Parallel()

	eval := New()
	_, err := eval.Eval("field", "!formData.isAnonymus", visibility.Context{
		Values: map[string]any{"isAnonymous": true},
	})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestEvaluatorSyntaxErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	values := visibility.Context{Values: map[string]any{"a": true, "b": true}}

	for _, rule := range []string{
		"a &",
		"a = true",
		"(a && b",
		"a && ",
		"a b",
		`a == "open`,
		"a; alert(1)",
	} {
		_, err := eval.Eval("field", rule, values)
		if !errors.Is(err, ErrSyntax) {
			t.Fatalf("%q: expected ErrSyntax, got %v", rule, err)
		}
	}
}

func TestEvaluatorEmptyRuleIsVisible(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("field", "   ", visibility.Context{})
	if err != nil || !ok {
		t.Fatalf("expected visible with no error, got %v, %v", ok, err)
	}
}

func TestEvaluatorExtrasLookup(t *testing.T) {
	t.Parallel()

	ok, err := New().Eval("field", "extras.portal.enabled", visibility.Context{
		Values: map[string]any{},
		Extras: map[string]any{"portal": map[string]any{"enabled": true}},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected nested extras lookup to be truthy")
	}
}
