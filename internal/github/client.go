package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/google/go-github/v45/github"
	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/config"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"golang.org/x/oauth2"
)

// Client handles GitHub API interactions
type Client struct {
	client *github.Client

	mu       sync.Mutex
	botLogin string
}

// NewClient creates a new GitHub client
func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// NewClientFromConfig creates a client using either a personal token or
// GitHub App credentials, honoring a GitHub Enterprise base URL.
func NewClientFromConfig(cfg *config.Config) (*Client, error) {
	if err := cfg.ValidateAuth(); err != nil {
		return nil, err
	}

	var ts oauth2.TokenSource
	if cfg.UsesApp() {
		pemData, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
		}
		generator, err := NewJWTGenerator(fmt.Sprint(cfg.GitHub.AppID), pemData)
		if err != nil {
			return nil, err
		}
		var opts []TokenExchangerOption
		if cfg.GitHub.BaseURL != "" {
			opts = append(opts, WithBaseURL(apiRoot(cfg.GitHub.BaseURL)))
		}
		ts = oauth2.ReuseTokenSource(nil, &InstallationTokenSource{
			Generator:      generator,
			Exchanger:      NewTokenExchanger(opts...),
			InstallationID: cfg.GitHub.InstallationID,
		})
		logging.Info("Authenticating as GitHub App",
			"app_id", cfg.GitHub.AppID,
			"installation_id", cfg.GitHub.InstallationID)
	} else {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
	}
	tc := oauth2.NewClient(context.Background(), ts)

	gh := github.NewClient(tc)
	if cfg.GitHub.BaseURL != "" {
		var err error
		gh, err = github.NewEnterpriseClient(cfg.GitHub.BaseURL, cfg.GitHub.BaseURL, tc)
		if err != nil {
			return nil, fmt.Errorf("failed to create enterprise client: %w", err)
		}
	}

	return &Client{
		client:   gh,
		botLogin: cfg.GitHub.BotLogin,
	}, nil
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func toDocument(content *github.RepositoryContent) vcs.Document {
	doc := vcs.Document{
		Name:     content.GetName(),
		Path:     content.GetPath(),
		Type:     content.GetType(),
		Encoding: content.GetEncoding(),
	}
	// GetContent decodes; the raw field keeps decoding in the caller's hands.
	if content.Content != nil {
		doc.Content = *content.Content
	}
	return doc
}

// GetFile fetches a single file with its encoded content
func (c *Client) GetFile(ctx context.Context, owner, repo, path string) (vcs.Document, error) {
	fileContent, _, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFound(resp) {
			return vcs.Document{}, fmt.Errorf("failed to get %s: %w", path, vcs.ErrNotFound)
		}
		return vcs.Document{}, fmt.Errorf("failed to get %s: %w", path, err)
	}
	if fileContent == nil {
		return vcs.Document{}, fmt.Errorf("failed to get %s: path is a directory", path)
	}

	return toDocument(fileContent), nil
}

// ListDirectory lists the entries of a directory. Entries carry no content;
// callers fetch the files they need with GetFile.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, path string) ([]vcs.Document, error) {
	_, entries, resp, err := c.client.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("failed to list %s: %w", path, vcs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("failed to list %s: path is a file", path)
	}

	docs := make([]vcs.Document, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, toDocument(entry))
	}

	logging.Debug("Listed directory", "owner", owner, "repo", repo, "path", path, "entries", len(docs))
	return docs, nil
}

// CreateComment posts a comment on a GitHub issue
func (c *Client) CreateComment(ctx context.Context, issue vcs.IssueRef, body string) error {
	_, _, err := c.client.Issues.CreateComment(
		ctx,
		issue.Owner,
		issue.Repo,
		issue.Number,
		&github.IssueComment{
			Body: github.String(body),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to create issue comment: %w", err)
	}

	return nil
}

// ListComments gets all comments for an issue
func (c *Client) ListComments(ctx context.Context, issue vcs.IssueRef) ([]vcs.Comment, error) {
	var allComments []vcs.Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, issue.Owner, issue.Repo, issue.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}

		for _, comment := range comments {
			allComments = append(allComments, vcs.Comment{
				ID:     comment.GetID(),
				Author: comment.GetUser().GetLogin(),
				Body:   comment.GetBody(),
			})
		}

		if resp.NextPage == 0 {
			break
		}

		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// DeleteComment removes an issue comment
func (c *Client) DeleteComment(ctx context.Context, issue vcs.IssueRef, commentID int64) error {
	_, err := c.client.Issues.DeleteComment(ctx, issue.Owner, issue.Repo, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}

// AddLabel adds a label to an issue
func (c *Client) AddLabel(ctx context.Context, issue vcs.IssueRef, label string) error {
	_, _, err := c.client.Issues.AddLabelsToIssue(ctx, issue.Owner, issue.Repo, issue.Number, []string{label})
	if err != nil {
		return fmt.Errorf("failed to add label %q: %w", label, err)
	}
	return nil
}

// RemoveLabel removes a label from an issue. A label that is already gone
// is not an error.
func (c *Client) RemoveLabel(ctx context.Context, issue vcs.IssueRef, label string) error {
	resp, err := c.client.Issues.RemoveLabelForIssue(ctx, issue.Owner, issue.Repo, issue.Number, label)
	if err != nil {
		if isNotFound(resp) {
			logging.Debug("Label already absent", "issue", issue.String(), "label", label)
			return nil
		}
		return fmt.Errorf("failed to remove label %q: %w", label, err)
	}
	return nil
}

// AuthenticatedLogin returns the configured bot login, or asks the API for
// the authenticated user and caches the answer.
func (c *Client) AuthenticatedLogin(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.botLogin != "" {
		return c.botLogin, nil
	}

	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get user info: %w", err)
	}
	if user.GetLogin() == "" {
		return "", errors.New("authenticated user has no login")
	}

	c.botLogin = user.GetLogin()
	logging.Info("Retrieved bot login from GitHub API", "login", c.botLogin)
	return c.botLogin, nil
}

var _ vcs.Service = (*Client)(nil)
