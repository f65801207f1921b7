// Package lifecycle reacts to issue events by checking the body against the
// repository's templates and posting or retracting guidance.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/headers"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/hellausefulsoftware/headercheck/internal/models"
	"github.com/hellausefulsoftware/headercheck/internal/templates"
)

// ErrSideEffect marks failures of comment or label mutations.
var ErrSideEffect = errors.New("side effect failed")

// Source supplies the templates and reply document for a repository.
type Source interface {
	Templates(ctx context.Context, owner, repo string) ([]templates.Template, error)
	Reply(ctx context.Context, owner, repo string) (string, error)
}

// Result is the outcome of evaluating an issue body.
type Result struct {
	Verdict   templates.Verdict
	Templates []templates.Template
	// Reply is only fetched when the verdict needs more information.
	Reply string
}

// Controller handles issue lifecycle events
type Controller struct {
	service vcs.Service
	source  Source
	label   string
}

// NewController creates a controller that mutates issues through service
// and reads templates from source.
func NewController(service vcs.Service, source Source, label string) *Controller {
	return &Controller{
		service: service,
		source:  source,
		label:   label,
	}
}

// Handle dispatches an event to Opened or Edited. Pull requests, other
// actions and edits that did not touch the body are ignored.
func (c *Controller) Handle(ctx context.Context, event models.IssueEvent) error {
	log := logging.WithFields(map[string]interface{}{
		"issue":    event.Issue.String(),
		"action":   event.Action,
		"delivery": event.DeliveryID,
	})

	if event.IsPullRequest {
		log.Debug("Ignoring pull request event")
		return nil
	}

	switch event.Action {
	case models.ActionOpened:
		return c.Opened(ctx, event)
	case models.ActionEdited:
		// Title-only edits recompute too, so stale guidance can be retracted.
		return c.Edited(ctx, event)
	default:
		log.Debug("Ignoring issue action")
		return nil
	}
}

// Evaluate computes the verdict for body without touching the issue.
func (c *Controller) Evaluate(ctx context.Context, owner, repo, body string) (Result, error) {
	result, err := c.match(ctx, owner, repo, body)
	if err != nil {
		return Result{}, err
	}
	if result.Verdict.Conforms() {
		return result, nil
	}

	reply, err := c.source.Reply(ctx, owner, repo)
	if err != nil {
		return Result{}, err
	}
	result.Reply = reply
	return result, nil
}

func (c *Controller) match(ctx context.Context, owner, repo, body string) (Result, error) {
	tmpls, err := c.source.Templates(ctx, owner, repo)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Verdict:   templates.Match(headers.FromText(body), tmpls),
		Templates: tmpls,
	}, nil
}

// Opened posts guidance and labels the issue when its body matches no template.
func (c *Controller) Opened(ctx context.Context, event models.IssueEvent) error {
	result, err := c.Evaluate(ctx, event.Issue.Owner, event.Issue.Repo, event.Body)
	if err != nil {
		return fmt.Errorf("failed to evaluate %s: %w", event.Issue, err)
	}

	if result.Verdict.Conforms() {
		logging.Info("Issue follows a template", "issue", event.Issue.String())
		return nil
	}

	logging.Info("Issue needs more information",
		"issue", event.Issue.String(),
		"author", event.Author,
		"guessed", guessName(result.Verdict))

	body := Guidance(event.Author, result.Reply, result.Verdict, result.Templates)

	var errs []error
	if err := c.service.CreateComment(ctx, event.Issue, body); err != nil {
		errs = append(errs, err)
	}
	if err := c.service.AddLabel(ctx, event.Issue, c.label); err != nil {
		errs = append(errs, err)
	}
	return sideEffects(event.Issue, errs)
}

// Edited retracts the label and bot comments once an edited body conforms.
func (c *Controller) Edited(ctx context.Context, event models.IssueEvent) error {
	result, err := c.match(ctx, event.Issue.Owner, event.Issue.Repo, event.Body)
	if err != nil {
		return fmt.Errorf("failed to evaluate %s: %w", event.Issue, err)
	}

	if result.Verdict.NeedsInfo() {
		logging.Debug("Edited issue still needs more information", "issue", event.Issue.String())
		return nil
	}

	logging.Info("Edited issue now follows a template", "issue", event.Issue.String(), "body_changed", event.BodyChanged)

	var errs []error
	if event.HasLabel(c.label) {
		if err := c.service.RemoveLabel(ctx, event.Issue, c.label); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, c.deleteBotComments(ctx, event.Issue)...)
	return sideEffects(event.Issue, errs)
}

func (c *Controller) deleteBotComments(ctx context.Context, issue vcs.IssueRef) []error {
	login, err := c.service.AuthenticatedLogin(ctx)
	if err != nil {
		return []error{err}
	}

	comments, err := c.service.ListComments(ctx, issue)
	if err != nil {
		return []error{err}
	}

	var errs []error
	deleted := 0
	for _, comment := range comments {
		if comment.Author != login {
			continue
		}
		if err := c.service.DeleteComment(ctx, issue, comment.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}

	logging.Debug("Deleted bot comments", "issue", issue.String(), "count", deleted)
	return errs
}

func sideEffects(issue vcs.IssueRef, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w on %s: %w", ErrSideEffect, issue, errors.Join(errs...))
}

func guessName(verdict templates.Verdict) string {
	if guess, ok := verdict.BestGuess(); ok {
		return guess.DisplayName()
	}
	return ""
}
