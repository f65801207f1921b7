package vcs

import (
	"context"
	"errors"
)

// ErrNotFound is returned (wrapped) when a requested path does not exist.
var ErrNotFound = errors.New("not found")

// Service defines the operations the issue bot needs from a hosting platform
type Service interface {
	// Repository contents
	// ListDirectory returns directory entries without content.
	ListDirectory(ctx context.Context, owner, repo, path string) ([]Document, error)
	GetFile(ctx context.Context, owner, repo, path string) (Document, error)

	// Issue operations
	CreateComment(ctx context.Context, issue IssueRef, body string) error
	ListComments(ctx context.Context, issue IssueRef) ([]Comment, error)
	DeleteComment(ctx context.Context, issue IssueRef, commentID int64) error
	AddLabel(ctx context.Context, issue IssueRef, label string) error
	RemoveLabel(ctx context.Context, issue IssueRef, label string) error

	// Authentication
	AuthenticatedLogin(ctx context.Context) (string, error)
}

// ServiceProvider creates VCS service instances
type ServiceProvider interface {
	GetService() (Service, error)
}
