package html

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaletteTokensFallBackToDefaults(t *testing.T) {
	tokens := Palette{Button: " #ff0000 "}.Tokens()
	if tokens["button"] != "#ff0000" {
		t.Fatalf("expected trimmed override, got %q", tokens["button"])
	}
	if tokens["header-bg"] != DefaultPalette().HeaderBg {
		t.Fatalf("expected default header colour, got %q", tokens["header-bg"])
	}
}

func TestRendererConfigMergesVariant(t *testing.T) {
	cfg := ThemeConfig(DefaultPalette(), map[string]map[string]string{
		"contrast": {"button": "#000000"},
	}, "contrast")

	if cfg.Theme != DefaultThemeName || cfg.Variant != "contrast" {
		t.Fatalf("unexpected selection %q/%q", cfg.Theme, cfg.Variant)
	}
	if cfg.CSSVars["--button"] != "#000000" || cfg.Tokens["section-title"] != "#1e40af" {
		t.Fatalf("unexpected vars %v", cfg.CSSVars)
	}
	if RendererConfig(nil) != nil {
		t.Fatalf("nil selection must yield nil config")
	}
}

func TestCSSVarsStyleDropsUnsafeValues(t *testing.T) {
	got := cssVarsStyle(map[string]string{
		"--b": "red;}</style><script>",
		"--a": "#fff",
		"--c": ";",
	})
	want := ":root {\n  --a: #fff;\n  --b: red/stylescript;\n}"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("style mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(got, "<") {
		t.Fatalf("markup leaked into style")
	}
}

func TestSanitizers(t *testing.T) {
	if got := SanitizeText("Fraud & <i>Abuse</i>"); got != "Fraud & Abuse" {
		t.Fatalf("unexpected text %q", got)
	}
	notice := SanitizeNotice(`<p onclick="x()">See <a href="https://example.gov/policy">policy</a></p><iframe src="x"></iframe>`)
	if strings.Contains(notice, "onclick") || strings.Contains(notice, "iframe") {
		t.Fatalf("unsafe markup kept: %q", notice)
	}
	if !strings.Contains(notice, `href="https://example.gov/policy"`) || !strings.Contains(notice, `rel="nofollow`) {
		t.Fatalf("expected link kept with nofollow: %q", notice)
	}
}
