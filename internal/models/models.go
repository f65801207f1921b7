package models

import (
	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
)

// Issue actions the controller reacts to.
const (
	ActionOpened = "opened"
	ActionEdited = "edited"
)

// IssueEvent is a platform-neutral view of an issue webhook delivery
type IssueEvent struct {
	Action string
	Issue  vcs.IssueRef
	// Body is the issue body after the action.
	Body string
	// Author is the login of the user who opened the issue.
	Author string
	// Labels are the issue's labels at delivery time.
	Labels []string
	// BodyChanged is set on edits that touched the body.
	BodyChanged   bool
	IsPullRequest bool
	DeliveryID    string
}

// HasLabel reports whether the event's issue carries label
func (e IssueEvent) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}
