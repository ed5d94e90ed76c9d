package report

import (
	"github.com/goliatone/go-reportform/pkg/model"
)

// Snapshot is the serialisable part of the controller state: what a user has
// typed and where they are in the flow. The parsed form and option sets are
// rebuilt from configuration, so they are not carried.
type Snapshot struct {
	Values      model.Values            `json:"values"`
	Mode        Mode                    `json:"mode"`
	Submitted   bool                    `json:"submitted,omitempty"`
	Error       string                  `json:"error,omitempty"`
	Result      *model.SubmissionResult `json:"result,omitempty"`
	LookupType  LookupType              `json:"lookupType"`
	AnonymousID string                  `json:"anonymousId,omitempty"`
	FullName    string                  `json:"fullName,omitempty"`
	Email       string                  `json:"email,omitempty"`
	Submissions []model.Submission      `json:"submissions,omitempty"`
}

// Snapshot captures the current user state.
func (c *Controller) Snapshot() Snapshot {
	s := c.store.Get()
	snap := Snapshot{
		Values:      s.Values.Clone(),
		Mode:        s.Mode,
		Submitted:   s.Submitted,
		Error:       s.Error,
		LookupType:  s.Lookup.Type,
		AnonymousID: s.Lookup.AnonymousID,
		FullName:    s.Lookup.FullName,
		Email:       s.Lookup.Email,
		Submissions: append([]model.Submission(nil), s.Lookup.Submissions...),
	}
	if s.Result != nil {
		result := *s.Result
		snap.Result = &result
	}
	return snap
}

// Restore applies a snapshot taken from a controller built with the same
// configuration. Values for fields the current form does not declare are
// dropped; missing ones keep their initial value.
func (c *Controller) Restore(snap Snapshot) {
	c.store.Update(func(s State) State {
		values := s.Values.Clone()
		for _, field := range s.Form.Fields() {
			value, ok := snap.Values[field.Name]
			if !ok {
				continue
			}
			if field.Type == model.FieldTypeRadio || field.Type == model.FieldTypeCheckbox {
				value = model.CoerceBool(value)
			}
			values[field.Name] = value
		}

		s.Values = values
		s.Mode = ParseMode(string(snap.Mode))
		s.Submitted = snap.Submitted
		s.Error = snap.Error
		s.Result = nil
		if snap.Result != nil {
			result := *snap.Result
			s.Result = &result
		}
		lookupType := LookupContact
		if snap.LookupType != "" {
			lookupType = ParseLookupType(string(snap.LookupType))
		}
		s.Lookup = LookupState{
			Type:        lookupType,
			AnonymousID: snap.AnonymousID,
			FullName:    snap.FullName,
			Email:       snap.Email,
			Submissions: append([]model.Submission(nil), snap.Submissions...),
		}
		s.Loading = false
		return s
	})
}
