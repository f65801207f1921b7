package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Repository loads templates and the reply document from a hosted repository.
// Nothing is cached: every call reads the current repository contents.
type Repository struct {
	service   vcs.Service
	directory string
	replyPath string
}

// NewRepository creates a Repository. An empty replyPath disables the reply document.
func NewRepository(service vcs.Service, directory, replyPath string) *Repository {
	return &Repository{
		service:   service,
		directory: directory,
		replyPath: replyPath,
	}
}

// maxConcurrentFetches bounds the per-event fan-out over template files.
const maxConcurrentFetches = 4

// Templates returns the repository's templates in listing order. Only
// template files are fetched, so unrelated files in the directory cannot
// fail the event.
func (r *Repository) Templates(ctx context.Context, owner, repo string) ([]Template, error) {
	entries, err := r.service.ListDirectory(ctx, owner, repo, r.directory)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s in %s/%s: %w", ErrFetch, r.directory, owner, repo, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsFile() || !IsTemplateFile(entry.Name) {
			logging.Debug("Skipping template directory entry", "name", entry.Name, "type", entry.Type)
			continue
		}
		paths = append(paths, entry.Path)
	}

	result := make([]Template, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, p := range paths {
		g.Go(func() error {
			doc, err := r.service.GetFile(gctx, owner, repo, p)
			if err != nil {
				return fmt.Errorf("%w: reading %s in %s/%s: %w", ErrFetch, p, owner, repo, err)
			}
			tmpl, err := FromDocument(doc)
			if err != nil {
				return err
			}
			result[i] = tmpl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Debug("Loaded templates", "owner", owner, "repo", repo, "count", len(result))
	return result, nil
}

// Reply returns the decoded reply document, or "" when none is configured.
func (r *Repository) Reply(ctx context.Context, owner, repo string) (string, error) {
	if r.replyPath == "" {
		return "", nil
	}

	doc, err := r.service.GetFile(ctx, owner, repo, r.replyPath)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s in %s/%s: %w", ErrFetch, r.replyPath, owner, repo, err)
	}

	text, err := Decode(doc.Content, doc.Encoding)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", r.replyPath, err)
	}
	return text, nil
}

// LocalSource reads templates from a directory on disk, in file name order.
type LocalSource struct {
	Directory string
	ReplyPath string
}

// Templates ignores owner and repo; the directory is the whole source.
func (s LocalSource) Templates(_ context.Context, _, _ string) ([]Template, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	var result []Template
	for _, entry := range entries {
		if entry.IsDir() || !IsTemplateFile(entry.Name()) {
			continue
		}
		text, err := readText(filepath.Join(s.Directory, entry.Name()))
		if err != nil {
			return nil, err
		}
		result = append(result, Parse(entry.Name(), text))
	}
	return result, nil
}

// Reply reads the reply document, or returns "" when none is configured.
func (s LocalSource) Reply(_ context.Context, _, _ string) (string, error) {
	if s.ReplyPath == "" {
		return "", nil
	}
	return readText(s.ReplyPath)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrDecode, path)
	}
	return stripBOM(string(data)), nil
}
