// Package vcstest provides an in-memory vcs.Service for tests.
package vcstest

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"sync"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
)

// Call records one mutation issued against the fake.
type Call struct {
	Method string
	Issue  vcs.IssueRef
	Arg    string
}

// Fake is a single-repository vcs.Service backed by maps. Errors can be
// injected per method name via Fail.
type Fake struct {
	Login string

	mu       sync.Mutex
	files    map[string]vcs.Document
	dirs     map[string][]string
	comments map[int][]vcs.Comment
	labels   map[int][]string
	failures map[string]error
	pathErrs map[string]error
	calls    []Call
	nextID   int64
}

// New returns an empty fake whose bot identity is login.
func New(login string) *Fake {
	return &Fake{
		Login:    login,
		files:    make(map[string]vcs.Document),
		dirs:     make(map[string][]string),
		comments: make(map[int][]vcs.Comment),
		labels:   make(map[int][]string),
		failures: make(map[string]error),
		pathErrs: make(map[string]error),
		nextID:   1000,
	}
}

// PutFile stores text base64-encoded at p and lists it in its directory.
func (f *Fake) PutFile(p, text string) {
	f.PutRaw(p, base64.StdEncoding.EncodeToString([]byte(text)), "base64")
}

// PutRaw stores already-encoded content at p.
func (f *Fake) PutRaw(p, content, encoding string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := path.Dir(p)
	if _, exists := f.files[p]; !exists {
		f.dirs[dir] = append(f.dirs[dir], p)
	}
	f.files[p] = vcs.Document{
		Name:     path.Base(p),
		Path:     p,
		Type:     vcs.DocumentFile,
		Encoding: encoding,
		Content:  content,
	}
}

// AddComment seeds an existing comment and returns its ID.
func (f *Fake) AddComment(number int, author, body string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.comments[number] = append(f.comments[number], vcs.Comment{ID: f.nextID, Author: author, Body: body})
	return f.nextID
}

// SetLabels seeds the labels of an issue.
func (f *Fake) SetLabels(number int, labels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels[number] = append([]string(nil), labels...)
}

// Fail makes every later call to method return err.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

// FailPath makes every later GetFile of p return err.
func (f *Fake) FailPath(p string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pathErrs[p] = err
}

// Calls returns the recorded mutations in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Comments returns the current comments on an issue.
func (f *Fake) Comments(number int) []vcs.Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]vcs.Comment(nil), f.comments[number]...)
}

// Labels returns the current labels on an issue.
func (f *Fake) Labels(number int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.labels[number]...)
}

func (f *Fake) failure(method string) error {
	return f.failures[method]
}

func (f *Fake) record(method string, issue vcs.IssueRef, arg string) {
	f.calls = append(f.calls, Call{Method: method, Issue: issue, Arg: arg})
}

// ListDirectory implements vcs.Service.
func (f *Fake) ListDirectory(_ context.Context, _, _, dir string) ([]vcs.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ListDirectory"); err != nil {
		return nil, err
	}
	paths, ok := f.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, vcs.ErrNotFound)
	}
	docs := make([]vcs.Document, 0, len(paths))
	for _, p := range paths {
		entry := f.files[p]
		entry.Encoding = ""
		entry.Content = ""
		docs = append(docs, entry)
	}
	return docs, nil
}

// GetFile implements vcs.Service.
func (f *Fake) GetFile(_ context.Context, _, _, p string) (vcs.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetFile"); err != nil {
		return vcs.Document{}, err
	}
	if err := f.pathErrs[p]; err != nil {
		return vcs.Document{}, err
	}
	doc, ok := f.files[p]
	if !ok {
		return vcs.Document{}, fmt.Errorf("%s: %w", p, vcs.ErrNotFound)
	}
	return doc, nil
}

// CreateComment implements vcs.Service.
func (f *Fake) CreateComment(_ context.Context, issue vcs.IssueRef, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateComment", issue, body)
	if err := f.failure("CreateComment"); err != nil {
		return err
	}
	f.nextID++
	f.comments[issue.Number] = append(f.comments[issue.Number], vcs.Comment{ID: f.nextID, Author: f.Login, Body: body})
	return nil
}

// ListComments implements vcs.Service.
func (f *Fake) ListComments(_ context.Context, issue vcs.IssueRef) ([]vcs.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ListComments"); err != nil {
		return nil, err
	}
	return append([]vcs.Comment(nil), f.comments[issue.Number]...), nil
}

// DeleteComment implements vcs.Service.
func (f *Fake) DeleteComment(_ context.Context, issue vcs.IssueRef, commentID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteComment", issue, fmt.Sprint(commentID))
	if err := f.failure("DeleteComment"); err != nil {
		return err
	}
	kept := f.comments[issue.Number][:0]
	for _, c := range f.comments[issue.Number] {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	f.comments[issue.Number] = kept
	return nil
}

// AddLabel implements vcs.Service.
func (f *Fake) AddLabel(_ context.Context, issue vcs.IssueRef, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddLabel", issue, label)
	if err := f.failure("AddLabel"); err != nil {
		return err
	}
	f.labels[issue.Number] = append(f.labels[issue.Number], label)
	return nil
}

// RemoveLabel implements vcs.Service.
func (f *Fake) RemoveLabel(_ context.Context, issue vcs.IssueRef, label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveLabel", issue, label)
	if err := f.failure("RemoveLabel"); err != nil {
		return err
	}
	kept := f.labels[issue.Number][:0]
	for _, l := range f.labels[issue.Number] {
		if l != label {
			kept = append(kept, l)
		}
	}
	f.labels[issue.Number] = kept
	return nil
}

// AuthenticatedLogin implements vcs.Service.
func (f *Fake) AuthenticatedLogin(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("AuthenticatedLogin"); err != nil {
		return "", err
	}
	return f.Login, nil
}

var _ vcs.Service = (*Fake)(nil)
