package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/notify"
)

// SetMode switches between submit and view modes, clearing the error and any
// previous lookup results.
func (c *Controller) SetMode(mode Mode) {
	c.store.Update(func(s State) State {
		s.Mode = mode
		s.Error = ""
		s.Lookup.Submissions = nil
		return s
	})
}

// SetLookupType switches the lookup type and clears every lookup input.
func (c *Controller) SetLookupType(kind LookupType) {
	c.store.Update(func(s State) State {
		s.Lookup.Type = kind
		s.Lookup.AnonymousID = ""
		s.Lookup.FullName = ""
		s.Lookup.Email = ""
		return s
	})
}

// SetLookupField records a lookup input. Known names are anonymousId,
// fullName and email; anything else is ignored.
func (c *Controller) SetLookupField(name, value string) {
	c.store.Update(func(s State) State {
		switch name {
		case LookupFieldAnonymousID:
			s.Lookup.AnonymousID = value
		case LookupFieldFullName:
			s.Lookup.FullName = value
		case LookupFieldEmail:
			s.Lookup.Email = value
		}
		return s
	})
}

// Lookup retrieves existing submissions using the current lookup type.
// Missing keys surface an error toast and return ErrLookupInput without a
// remote call; an empty result surfaces an informational toast.
func (c *Controller) Lookup(ctx context.Context) (model.LookupResult, error) {
	lookup := c.store.Get().Lookup

	if !lookup.Ready() {
		message := msgLookupContact
		if lookup.Type == LookupAnonymous {
			message = msgLookupAnonymousID
		}
		c.toast(ctx, titleError, message, notify.VariantError)
		return model.LookupResult{}, ErrLookupInput
	}
	if c.gateway == nil {
		return model.LookupResult{}, ErrNoGateway
	}

	c.store.Update(func(s State) State {
		s.Lookup.Loading = true
		s.Error = ""
		return s
	})
	defer c.store.Update(func(s State) State {
		s.Lookup.Loading = false
		return s
	})

	var (
		result model.LookupResult
		err    error
	)
	if lookup.Type == LookupAnonymous {
		result, err = c.gateway.GetSubmissionsByAnonymousID(ctx, strings.TrimSpace(lookup.AnonymousID))
	} else {
		result, err = c.gateway.GetSubmissionsByContact(ctx, strings.TrimSpace(lookup.FullName), strings.TrimSpace(lookup.Email))
	}
	if err != nil {
		c.logger.Error("report lookup failed", zap.String("type", string(lookup.Type)), zap.Error(err))
		c.fail(ctx, msgLookupFailed)
		return result, fmt.Errorf("report: lookup: %w", err)
	}
	if !result.Success {
		message := result.ErrorMessage
		if strings.TrimSpace(message) == "" {
			message = msgLookupFailed
		}
		c.fail(ctx, message)
		return result, nil
	}

	submissions := result.Submissions
	if submissions == nil {
		submissions = []model.Submission{}
	}
	c.store.Update(func(s State) State {
		s.Lookup.Submissions = submissions
		return s
	})
	if len(submissions) == 0 {
		c.toast(ctx, titleInfo, msgLookupEmpty, notify.VariantInfo)
	}
	return result, nil
}
