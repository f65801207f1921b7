// Package templates models repository issue templates and decides whether an
// issue body follows one of them.
package templates

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/headers"
	"gopkg.in/yaml.v3"
)

var (
	// ErrFetch marks failures to retrieve template or reply documents.
	ErrFetch = errors.New("template fetch failed")
	// ErrDecode marks documents that are not valid base64 or UTF-8.
	ErrDecode = errors.New("template decode failed")
)

// Template is a named list of headers an issue body is expected to contain.
type Template struct {
	// Name is the source file name.
	Name string
	// Title is the front matter "name", if the file declares one.
	Title   string
	Headers []string
}

// DisplayName returns the front matter title when present, else the file name.
func (t Template) DisplayName() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// SatisfiedBy reports whether every template header appears in userHeaders.
// A template without headers is trivially satisfied.
func (t Template) SatisfiedBy(userHeaders []string) bool {
	for _, h := range t.Headers {
		if !headers.Contains(userHeaders, h) {
			return false
		}
	}
	return true
}

// Overlaps reports whether at least one template header appears in userHeaders.
func (t Template) Overlaps(userHeaders []string) bool {
	for _, h := range t.Headers {
		if headers.Contains(userHeaders, h) {
			return true
		}
	}
	return false
}

type frontMatter struct {
	Name  string `yaml:"name"`
	About string `yaml:"about"`
}

// Parse builds a Template from decoded document text. A leading YAML front
// matter block supplies the title and is excluded from header extraction.
func Parse(name, text string) Template {
	lines := headers.Segment(text)
	tmpl := Template{Name: name}

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) != "---" {
				continue
			}
			var meta frontMatter
			if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &meta); err == nil {
				tmpl.Title = meta.Name
			}
			lines = lines[i+1:]
			break
		}
	}

	tmpl.Headers = headers.Extract(lines)
	return tmpl
}

// Decode turns contents-API payload text into a UTF-8 string.
func Decode(content, encoding string) (string, error) {
	switch encoding {
	case "", "base64":
	default:
		return "", fmt.Errorf("%w: unsupported encoding %q", ErrDecode, encoding)
	}

	// The API wraps base64 payloads at 60 columns.
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(content)
	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", ErrDecode)
	}
	return stripBOM(string(raw)), nil
}

// stripBOM drops a leading UTF-8 byte order mark, which would otherwise
// hide the first header or the front matter delimiter.
func stripBOM(text string) string {
	return strings.TrimPrefix(text, "\uFEFF")
}

// FromDocument decodes doc and parses it as a template.
func FromDocument(doc vcs.Document) (Template, error) {
	text, err := Decode(doc.Content, doc.Encoding)
	if err != nil {
		return Template{}, fmt.Errorf("decoding %s: %w", doc.Path, err)
	}
	return Parse(doc.Name, text), nil
}

// IsTemplateFile reports whether a directory entry name is an issue template.
// The template chooser configuration lives in the same directory and is skipped.
func IsTemplateFile(name string) bool {
	switch strings.ToLower(path.Base(name)) {
	case "config.yml", "config.yaml":
		return false
	}
	return name != ""
}
