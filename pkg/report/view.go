package report

import (
	"sort"

	"github.com/goliatone/go-reportform/pkg/model"
)

// View derives everything a renderer needs from the current snapshot.
func (c *Controller) View() model.FormView {
	s := c.store.Get()
	sections := c.sectionViews(s)
	valid := c.validate(s)

	lookup := model.LookupView{
		IsAnonymousLookup: s.Lookup.Type == LookupAnonymous,
		AnonymousID:       s.Lookup.AnonymousID,
		FullName:          s.Lookup.FullName,
		Email:             s.Lookup.Email,
		Loading:           s.Lookup.Loading,
		Disabled:          !s.Lookup.Ready() || s.Lookup.Loading,
		TypeOptions:       LookupTypeOptions(),
		TypeValue:         string(s.Lookup.Type),
		Submissions:       s.Lookup.Submissions,
	}

	return model.FormView{
		Appearance:     c.appearance,
		Mode:           string(s.Mode),
		Sections:       sections,
		Notices:        s.Form.Notices,
		Values:         s.Values.Clone(),
		Loading:        s.Loading,
		Submitted:      s.Submitted,
		Error:          s.Error,
		Result:         s.Result,
		SubmitDisabled: s.Loading || !valid,
		ShowForm:       !s.Submitted,
		ShowSuccess:    s.Submitted && s.Result != nil && s.Result.Success,
		HasNotices:     len(s.Form.Notices) > 0,
		Lookup:         lookup,
	}
}

// FieldVisible reports whether the named field renders for the current
// values. Fields in hidden sections and undeclared names are not visible.
func (c *Controller) FieldVisible(name string) bool {
	s := c.store.Get()
	for _, section := range s.Form.Sections {
		if !section.Visible {
			continue
		}
		for _, field := range section.Fields {
			if field.Name == name {
				return c.resolver.Visible(name, s.Values)
			}
		}
	}
	return false
}

// Today returns the date bound applied to date inputs.
func (c *Controller) Today() string {
	return c.now().UTC().Format(dateLayout)
}

func (c *Controller) sectionViews(s State) []model.SectionView {
	sections := make([]model.Section, 0, len(s.Form.Sections))
	for _, section := range s.Form.Sections {
		if section.Visible {
			sections = append(sections, section)
		}
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})

	today := c.Today()
	out := make([]model.SectionView, 0, len(sections))
	for _, section := range sections {
		view := model.SectionView{
			ID:        section.ID,
			Title:     section.Title,
			Icon:      section.Icon,
			Order:     section.Order,
			IsNotices: section.IsNotices,
			Fields:    make([]model.FieldView, 0, len(section.Fields)),
		}
		for _, field := range section.Fields {
			view.Fields = append(view.Fields, c.fieldView(field, s, today))
		}
		out = append(out, view)
	}
	return out
}

func (c *Controller) fieldView(field model.Field, s State, today string) model.FieldView {
	width := field.Width
	if width == "" {
		width = defaultFieldWidth
	}
	view := model.FieldView{
		Field:          field,
		Value:          fieldValue(s.Values, field.Name),
		IsRequired:     IsRequired(field, s.Values),
		IsVisible:      c.resolver.Visible(field.Name, s.Values),
		ContainerStyle: "width: " + width + ";",
		IsTextInput:    field.Type.IsTextInput(),
		IsCheckbox:     field.Type == model.FieldTypeCheckbox,
		IsRadio:        field.Type == model.FieldTypeRadio,
		IsCombobox:     field.Type == model.FieldTypeCombobox,
		IsTextarea:     field.Type == model.FieldTypeTextarea,
	}
	view.Options = fieldOptions(field, s.Options)
	if field.Type == model.FieldTypeDate {
		view.Max = today
	}
	return view
}

func fieldValue(values model.Values, name string) any {
	value, ok := values[name]
	if !ok || value == nil {
		return ""
	}
	return value
}

// fieldOptions prefers literal options, then the named source, then an empty
// list for choice fields.
func fieldOptions(field model.Field, sources map[string][]model.Option) []model.Option {
	if len(field.Options) > 0 {
		return field.Options
	}
	if field.OptionsSource != "" {
		if options, ok := sources[field.OptionsSource]; ok {
			return options
		}
		return []model.Option{}
	}
	if field.Type.HasOptions() {
		return []model.Option{}
	}
	return nil
}
