package grammar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
)

const (
	sectionSeparator = ", "
	headerSeparator  = " - "
	fieldSeparator   = ";"
	legacySeparator  = ","
	attrSeparator    = ":"
	optionSeparator  = ","
	pairSeparator    = "|"

	minAttributes = 6

	defaultIcon  = "utility:record"
	noticesID    = "notices"
	noticesTitle = "Important Information"
	noticesIcon  = "utility:info"
)

// ErrMalformedOption is returned when a literal option entry lacks the
// "label|value" separator.
var ErrMalformedOption = errors.New("grammar: option entry must be label|value")

// Parse turns the configuration strings into a FormModel. Parsing is pure and
// idempotent. Field definitions with fewer than six attributes are dropped;
// any other malformed input is reported as an error and callers are expected
// to degrade to an empty model.
func Parse(cfg Config) (model.FormModel, error) {
	var (
		sections []model.Section
		err      error
	)
	if strings.TrimSpace(cfg.SectionsAndFields) != "" {
		sections, err = parseCombined(cfg)
	} else {
		sections, err = parseLegacy(cfg)
	}
	if err != nil {
		return model.FormModel{}, err
	}

	notices := ParseNotices(cfg.NoticeContent)
	return model.FormModel{Sections: sections, Notices: notices}, nil
}

func parseCombined(cfg Config) ([]model.Section, error) {
	icons := splitTrim(cfg.SectionIcons, ",")
	sections := []model.Section{}

	for index, raw := range strings.Split(cfg.SectionsAndFields, sectionSeparator) {
		dash := strings.Index(raw, headerSeparator)
		if dash < 0 {
			continue
		}
		title := strings.TrimSpace(raw[:dash])
		fields, err := ParseFields(strings.TrimSpace(raw[dash+len(headerSeparator):]), fieldSeparator)
		if err != nil {
			return nil, fmt.Errorf("grammar: section %q: %w", title, err)
		}
		sections = append(sections, model.Section{
			ID:      fmt.Sprintf("section%d", index),
			Title:   title,
			Icon:    iconAt(icons, index),
			Visible: true,
			Order:   index + 1,
			Fields:  fields,
		})
	}

	if cfg.NoticeContent != "" {
		sections = append(sections, model.Section{
			ID:        noticesID,
			Title:     noticesTitle,
			Icon:      noticesIcon,
			Visible:   true,
			Order:     len(sections) + 1,
			Fields:    []model.Field{},
			IsNotices: true,
		})
	}
	return sections, nil
}

func parseLegacy(cfg Config) ([]model.Section, error) {
	titles := splitTrim(cfg.SectionTitles, ",")
	icons := splitTrim(cfg.SectionIcons, ",")

	groups := []struct {
		id  string
		raw string
	}{
		{id: "privacy", raw: cfg.PrivacyFields},
		{id: "contact", raw: cfg.ContactFields},
		{id: "reportDetails", raw: cfg.ReportDetailsFields},
		{id: "incident", raw: cfg.IncidentFields},
		{id: noticesID},
	}

	sections := make([]model.Section, 0, len(titles))
	for index, title := range titles {
		id := fmt.Sprintf("section%d", index)
		var fields []model.Field
		if index < len(groups) {
			id = groups[index].id
			parsed, err := ParseFields(groups[index].raw, legacySeparator)
			if err != nil {
				return nil, fmt.Errorf("grammar: legacy group %q: %w", id, err)
			}
			fields = parsed
		}
		if fields == nil {
			fields = []model.Field{}
		}
		sections = append(sections, model.Section{
			ID:        id,
			Title:     title,
			Icon:      iconAt(icons, index),
			Visible:   true,
			Order:     index + 1,
			Fields:    fields,
			IsNotices: id == noticesID,
		})
	}
	return sections, nil
}

// ParseFields parses a list of field definitions separated by sep. When sep
// is the legacy comma, a fragment that carries "|" but no ":" continues the
// literal option list of the previous field.
func ParseFields(raw, sep string) ([]model.Field, error) {
	if raw == "" {
		return []model.Field{}, nil
	}

	fields := []model.Field{}
	for index, def := range strings.Split(raw, sep) {
		def = strings.TrimSpace(def)
		if sep == legacySeparator && isOptionContinuation(def) && len(fields) > 0 {
			last := &fields[len(fields)-1]
			if last.Options != nil {
				more, err := parseOptions(def)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", last.ID, err)
				}
				last.Options = append(last.Options, more...)
				continue
			}
		}

		field, ok, err := parseField(def, index)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func parseField(def string, index int) (model.Field, bool, error) {
	parts := strings.Split(def, attrSeparator)
	if len(parts) < minAttributes {
		return model.Field{}, false, nil
	}

	field := model.Field{
		ID:       parts[0],
		Type:     model.FieldType(parts[1]),
		Label:    parts[2],
		Name:     parts[3],
		Required: parts[4] == "true",
		Width:    parts[5],
		Order:    index + 1,
	}

	if len(parts) < 7 || parts[6] == "" {
		return field, true, nil
	}
	extra := parts[6]

	switch {
	case field.Type.HasOptions():
		if strings.Contains(extra, pairSeparator) {
			options, err := parseOptions(extra)
			if err != nil {
				return model.Field{}, false, fmt.Errorf("field %q: %w", field.ID, err)
			}
			field.Options = options
		} else {
			field.OptionsSource = strings.TrimSpace(extra)
		}
	case field.Type == model.FieldTypeTextarea:
		field.Rows = leadingInt(extra)
	}
	return field, true, nil
}

func parseOptions(raw string) ([]model.Option, error) {
	entries := strings.Split(raw, optionSeparator)
	options := make([]model.Option, 0, len(entries))
	for _, entry := range entries {
		label, value, found := strings.Cut(entry, pairSeparator)
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrMalformedOption, entry)
		}
		// a second "|" is ignored, matching label|value pair semantics
		value, _, _ = strings.Cut(value, pairSeparator)
		options = append(options, model.Option{
			Label: strings.TrimSpace(label),
			Value: optionValue(value),
		})
	}
	return options, nil
}

func optionValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		return strings.TrimSpace(raw)
	}
}

// ParseNotices parses "title|content" pairs separated by commas. A fragment
// without "|" continues the previous notice body, so bodies may contain
// commas. Entries with an empty title or body are dropped.
func ParseNotices(raw string) []model.Notice {
	if raw == "" {
		return []model.Notice{}
	}

	type pending struct {
		title string
		body  string
	}
	var entries []pending
	for _, fragment := range strings.Split(raw, ",") {
		title, body, found := strings.Cut(fragment, pairSeparator)
		if !found {
			if len(entries) > 0 {
				entries[len(entries)-1].body += "," + fragment
			}
			continue
		}
		body, _, _ = strings.Cut(body, pairSeparator)
		entries = append(entries, pending{title: title, body: body})
	}

	notices := []model.Notice{}
	for _, entry := range entries {
		notice := model.Notice{
			Title:   strings.TrimSpace(entry.title),
			Content: strings.TrimSpace(entry.body),
		}
		if notice.Title == "" || notice.Content == "" {
			continue
		}
		notices = append(notices, notice)
	}
	return notices
}

func isOptionContinuation(def string) bool {
	return strings.Contains(def, pairSeparator) && !strings.Contains(def, attrSeparator)
}

func splitTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func iconAt(icons []string, index int) string {
	if index < len(icons) && icons[index] != "" {
		return icons[index]
	}
	return defaultIcon
}

func leadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	n := 0
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
