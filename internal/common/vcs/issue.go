package vcs

import "fmt"

// IssueRef identifies an issue on the hosting platform.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// String returns the owner/repo#number form.
func (r IssueRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// Comment represents a comment on an issue
type Comment struct {
	ID     int64
	Author string
	Body   string
}

// Document kinds reported by directory listings.
const (
	DocumentFile = "file"
	DocumentDir  = "dir"
)

// Document is a repository file as returned by the contents API. Content
// is still encoded as described by Encoding (normally "base64").
type Document struct {
	Name     string
	Path     string
	Type     string
	Encoding string
	Content  string
}

// IsFile reports whether the document is a regular file.
func (d Document) IsFile() bool {
	return d.Type == "" || d.Type == DocumentFile
}
