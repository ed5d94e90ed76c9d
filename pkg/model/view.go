package model

// FieldView is a Field resolved against the current form state, ready for a
// renderer: value bound, options attached, visibility and required flags
// evaluated.
type FieldView struct {
	Field
	Value          any    `json:"value"`
	IsRequired     bool   `json:"isRequired"`
	IsVisible      bool   `json:"isVisible"`
	ContainerStyle string `json:"containerStyle"`
	Max            string `json:"max,omitempty"`

	IsTextInput bool `json:"isTextInput"`
	IsCheckbox  bool `json:"isCheckbox"`
	IsRadio     bool `json:"isRadio"`
	IsCombobox  bool `json:"isCombobox"`
	IsTextarea  bool `json:"isTextarea"`
}

// SectionView is a visible section with resolved fields.
type SectionView struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Icon      string      `json:"icon"`
	Order     int         `json:"order"`
	IsNotices bool        `json:"isNoticesSection"`
	Fields    []FieldView `json:"fields"`
}

// Appearance carries the presentational properties of the report form.
type Appearance struct {
	Width          string `json:"formWidth" mapstructure:"width"`
	MaxWidth       string `json:"formMaxWidth" mapstructure:"max_width"`
	HeaderTitle    string `json:"headerTitle" mapstructure:"header_title"`
	HeaderSubtitle string `json:"headerSubtitle" mapstructure:"header_subtitle"`
	HeaderIcon     string `json:"headerIcon" mapstructure:"header_icon"`
	SecurityNotice string `json:"securityNotice" mapstructure:"security_notice"`
}

// ContainerStyle returns the inline style applied to the form container.
func (a Appearance) ContainerStyle() string {
	return "width: " + a.Width + "; max-width: " + a.MaxWidth + ";"
}

// LookupView mirrors the "view my submissions" panel.
type LookupView struct {
	IsAnonymousLookup bool         `json:"isAnonymousLookup"`
	AnonymousID       string       `json:"anonymousId"`
	FullName          string       `json:"fullName"`
	Email             string       `json:"email"`
	Disabled          bool         `json:"disabled"`
	Loading           bool         `json:"loading"`
	TypeOptions       []Option     `json:"typeOptions"`
	TypeValue         string       `json:"typeValue"`
	Submissions       []Submission `json:"submissions"`
}

// FormView is everything a renderer needs to draw the report component.
type FormView struct {
	Appearance     Appearance        `json:"appearance"`
	Mode           string            `json:"mode"`
	Sections       []SectionView     `json:"sections"`
	Notices        []Notice          `json:"notices"`
	Values         Values            `json:"values"`
	Loading        bool              `json:"loading"`
	Submitted      bool              `json:"submitted"`
	Error          string            `json:"error,omitempty"`
	Result         *SubmissionResult `json:"result,omitempty"`
	SubmitDisabled bool              `json:"submitDisabled"`
	ShowForm       bool              `json:"showForm"`
	ShowSuccess    bool              `json:"showSuccess"`
	HasNotices     bool              `json:"hasNotices"`
	Lookup         LookupView        `json:"lookup"`
}
