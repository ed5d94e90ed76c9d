package html

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName names the manifest built from a Palette.
const DefaultThemeName = "reportform"

// Palette holds the colour properties exposed by the report component.
type Palette struct {
	HeaderBg           string `json:"headerBgColor" mapstructure:"header_bg"`
	HeaderGradientEnd  string `json:"headerGradientEnd" mapstructure:"header_gradient_end"`
	SectionTitle       string `json:"sectionTitleColor" mapstructure:"section_title"`
	SectionTitleBorder string `json:"sectionTitleBorder" mapstructure:"section_title_border"`
	Button             string `json:"buttonColor" mapstructure:"button"`
	ButtonHover        string `json:"buttonColorHover" mapstructure:"button_hover"`
}

// DefaultPalette returns the stock blue palette.
func DefaultPalette() Palette {
	return Palette{
		HeaderBg:           "#1e3a8a",
		HeaderGradientEnd:  "#2563eb",
		SectionTitle:       "#1e40af",
		SectionTitleBorder: "#3b82f6",
		Button:             "#1e40af",
		ButtonHover:        "#1e3a8a",
	}
}

// Tokens maps the palette onto theme token names. Blank entries fall back to
// the default palette.
func (p Palette) Tokens() map[string]string {
	def := DefaultPalette()
	pick := func(v, fallback string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return strings.TrimSpace(v)
	}
	return map[string]string{
		"header-bg":            pick(p.HeaderBg, def.HeaderBg),
		"header-gradient-end":  pick(p.HeaderGradientEnd, def.HeaderGradientEnd),
		"section-title":        pick(p.SectionTitle, def.SectionTitle),
		"section-title-border": pick(p.SectionTitleBorder, def.SectionTitleBorder),
		"button":               pick(p.Button, def.Button),
		"button-hover":         pick(p.ButtonHover, def.ButtonHover),
	}
}

// Manifest builds a go-theme manifest from the palette. Each variant entry
// overrides a subset of tokens.
func Manifest(p Palette, variants map[string]map[string]string) *theme.Manifest {
	manifest := &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens:  p.Tokens(),
	}
	if len(variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(variants))
		for name, tokens := range variants {
			manifest.Variants[name] = theme.Variant{Tokens: copyStringMap(tokens)}
		}
	}
	return manifest
}

// RendererConfig resolves a selection into the tokens and CSS variables the
// templates consume. Variant tokens win over manifest tokens.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	tokens := copyStringMap(selection.Manifest.Tokens)
	if tokens == nil {
		tokens = make(map[string]string)
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}
	return &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
		Tokens:  tokens,
		CSSVars: vars,
	}
}

// ThemeConfig is a shortcut for selecting variant from a palette manifest.
func ThemeConfig(p Palette, variants map[string]map[string]string, variant string) *theme.RendererConfig {
	manifest := Manifest(p, variants)
	return RendererConfig(&theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	})
}

type themeContext struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"cssVarsStyle,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	return themeContext{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		value := cssValue(vars[key])
		if value == "" {
			continue
		}
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// cssValue drops characters that could close the declaration or the style
// element.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\':
			return -1
		}
		return r
	}, strings.TrimSpace(v))
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
