package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/common/vcs/vcstest"
	"github.com/hellausefulsoftware/headercheck/internal/models"
	"github.com/hellausefulsoftware/headercheck/internal/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	botLogin    = "headercheck[bot]"
	label       = "more-info-required"
	templateDir = ".github/ISSUE_TEMPLATE"
	replyPath   = ".github/ISSUE_TEMPLATE_REPLY.md"
)

var issue = vcs.IssueRef{Owner: "octo", Repo: "widgets", Number: 7}

func newFixture(t *testing.T) (*vcstest.Fake, *Controller) {
	t.Helper()
	fake := vcstest.New(botLogin)
	fake.PutFile(templateDir+"/bug.md", "# Steps\n\n# Expected\n")
	fake.PutFile(templateDir+"/feature.md", "# Motivation\n")
	fake.PutFile(replyPath, "Please fill in the issue template.")
	return fake, NewController(fake, templates.NewRepository(fake, templateDir, replyPath), label)
}

func opened(body string) models.IssueEvent {
	return models.IssueEvent{Action: models.ActionOpened, Issue: issue, Body: body, Author: "alice"}
}

func edited(body string, labels ...string) models.IssueEvent {
	return models.IssueEvent{Action: models.ActionEdited, Issue: issue, Body: body, Author: "alice", Labels: labels, BodyChanged: true}
}

func methods(calls []vcstest.Call) []string {
	var out []string
	for _, c := range calls {
		out = append(out, c.Method)
	}
	return out
}

func TestOpenedNonConformingPostsGuidanceAndLabels(t *testing.T) {
	fake, controller := newFixture(t)

	err := controller.Handle(context.Background(), opened("# Steps\nit broke"))
	require.NoError(t, err)

	assert.Equal(t, []string{"CreateComment", "AddLabel"}, methods(fake.Calls()))

	comments := fake.Comments(issue.Number)
	require.Len(t, comments, 1)
	assert.Equal(t, botLogin, comments[0].Author)
	assert.Contains(t, comments[0].Body, "Hello @alice!\nPlease fill in the issue template.\n")
	assert.Contains(t, comments[0].Body, "**bug.md**")
	assert.Contains(t, comments[0].Body, "- `# Expected`")
	assert.Equal(t, []string{label}, fake.Labels(issue.Number))
}

func TestOpenedConformingDoesNothing(t *testing.T) {
	fake, controller := newFixture(t)

	require.NoError(t, controller.Handle(context.Background(), opened("# Steps\nfoo\n# Expected\nbar")))
	assert.Empty(t, fake.Calls())
}

func TestOpenedWithoutHeadersListsEveryTemplate(t *testing.T) {
	fake, controller := newFixture(t)

	require.NoError(t, controller.Handle(context.Background(), opened("it does not work")))

	comments := fake.Comments(issue.Number)
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0].Body, "We could not detect which issue template you used")
	assert.Contains(t, comments[0].Body, "**bug.md**")
	assert.Contains(t, comments[0].Body, "**feature.md**")
}

func TestOpenedFetchFailureHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "template listing fails", method: "ListDirectory"},
		{name: "template fetch fails", path: templateDir + "/bug.md"},
		{name: "reply fetch fails", path: replyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, controller := newFixture(t)
			if tt.method != "" {
				fake.Fail(tt.method, errors.New("503 service unavailable"))
			} else {
				fake.FailPath(tt.path, errors.New("503 service unavailable"))
			}

			err := controller.Handle(context.Background(), opened("no headers"))
			require.Error(t, err)
			assert.ErrorIs(t, err, templates.ErrFetch)
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestOpenedDecodeFailureHasNoSideEffects(t *testing.T) {
	fake, controller := newFixture(t)
	fake.PutRaw(templateDir+"/broken.md", "!!!", "base64")

	err := controller.Handle(context.Background(), opened("no headers"))
	assert.ErrorIs(t, err, templates.ErrDecode)
	assert.Empty(t, fake.Calls())
}

func TestOpenedSideEffectsAreBestEffort(t *testing.T) {
	fake, controller := newFixture(t)
	commentErr := errors.New("comment rejected")
	fake.Fail("CreateComment", commentErr)

	err := controller.Handle(context.Background(), opened("no headers"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSideEffect)
	assert.ErrorIs(t, err, commentErr)
	assert.Equal(t, []string{"CreateComment", "AddLabel"}, methods(fake.Calls()))
	assert.Equal(t, []string{label}, fake.Labels(issue.Number))
}

func TestEditedConformingRetractsGuidance(t *testing.T) {
	fake, controller := newFixture(t)
	fake.SetLabels(issue.Number, "bug", label)
	fake.AddComment(issue.Number, botLogin, "Hello @alice!")
	human := fake.AddComment(issue.Number, "alice", "sorry, fixed")
	fake.AddComment(issue.Number, botLogin, "another reminder")

	err := controller.Handle(context.Background(), edited("# Steps\nfoo\n# Expected\nbar", "bug", label))
	require.NoError(t, err)

	assert.Equal(t, []string{"RemoveLabel", "DeleteComment", "DeleteComment"}, methods(fake.Calls()))
	assert.Equal(t, []string{"bug"}, fake.Labels(issue.Number))

	remaining := fake.Comments(issue.Number)
	require.Len(t, remaining, 1)
	assert.Equal(t, human, remaining[0].ID)
}

func TestEditedConformingWithoutLabelSkipsRemoval(t *testing.T) {
	fake, controller := newFixture(t)

	err := controller.Handle(context.Background(), edited("# Motivation\nplease"))
	require.NoError(t, err)
	assert.Empty(t, fake.Calls())
}

func TestEditedStillNonConformingDoesNothing(t *testing.T) {
	fake, controller := newFixture(t)
	fake.AddComment(issue.Number, botLogin, "Hello @alice!")

	require.NoError(t, controller.Handle(context.Background(), edited("# Steps only", label)))
	assert.Empty(t, fake.Calls())
	assert.Len(t, fake.Comments(issue.Number), 1)
}

func TestEditedDoesNotNeedReplyDocument(t *testing.T) {
	fake, controller := newFixture(t)
	fake.FailPath(replyPath, errors.New("reply unavailable"))

	require.NoError(t, controller.Handle(context.Background(), edited("# Motivation", label)))
	assert.Empty(t, fake.Labels(issue.Number))
}

func TestTitleOnlyEditRetractsStaleGuidance(t *testing.T) {
	fake, controller := newFixture(t)
	fake.SetLabels(issue.Number, label)
	fake.AddComment(issue.Number, botLogin, "Hello @alice!")

	event := edited("# Steps\nfoo\n# Expected\nbar", label)
	event.BodyChanged = false

	require.NoError(t, controller.Handle(context.Background(), event))
	assert.Equal(t, []string{"RemoveLabel", "DeleteComment"}, methods(fake.Calls()))
	assert.Empty(t, fake.Labels(issue.Number))
	assert.Empty(t, fake.Comments(issue.Number))
}

func TestEditedSideEffectFailuresAreJoined(t *testing.T) {
	fake, controller := newFixture(t)
	fake.AddComment(issue.Number, botLogin, "Hello @alice!")
	labelErr := errors.New("label api down")
	deleteErr := errors.New("delete forbidden")
	fake.Fail("RemoveLabel", labelErr)
	fake.Fail("DeleteComment", deleteErr)

	err := controller.Handle(context.Background(), edited("# Motivation", label))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSideEffect)
	assert.ErrorIs(t, err, labelErr)
	assert.ErrorIs(t, err, deleteErr)
	assert.Equal(t, []string{"RemoveLabel", "DeleteComment"}, methods(fake.Calls()))
}

func TestEditedListCommentsFailure(t *testing.T) {
	fake, controller := newFixture(t)
	fake.Fail("ListComments", errors.New("timeout"))

	err := controller.Handle(context.Background(), edited("# Motivation", label))
	assert.ErrorIs(t, err, ErrSideEffect)
	assert.Equal(t, []string{"RemoveLabel"}, methods(fake.Calls()))
}

func TestHandleIgnoresIrrelevantEvents(t *testing.T) {
	tests := []struct {
		name  string
		event models.IssueEvent
	}{
		{
			name:  "pull request",
			event: models.IssueEvent{Action: models.ActionOpened, Issue: issue, Body: "nothing", IsPullRequest: true},
		},
		{
			name:  "closed action",
			event: models.IssueEvent{Action: "closed", Issue: issue, Body: "nothing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, controller := newFixture(t)
			fake.Fail("ListDirectory", errors.New("must not be called"))

			require.NoError(t, controller.Handle(context.Background(), tt.event))
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestEvaluateHasNoSideEffects(t *testing.T) {
	fake, controller := newFixture(t)

	result, err := controller.Evaluate(context.Background(), "octo", "widgets", "# Motivation\n")
	require.NoError(t, err)
	assert.True(t, result.Verdict.Conforms())
	assert.Empty(t, result.Reply)
	assert.Len(t, result.Templates, 2)

	result, err = controller.Evaluate(context.Background(), "octo", "widgets", "# Steps\n")
	require.NoError(t, err)
	assert.True(t, result.Verdict.NeedsInfo())
	assert.Equal(t, "Please fill in the issue template.", result.Reply)

	assert.Empty(t, fake.Calls())
}
