package headers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegmentLineEndings(t *testing.T) {
	want := []string{"# Steps", "foo", "# Expected", "bar"}

	inputs := map[string]string{
		"lf":        "# Steps\nfoo\n# Expected\nbar",
		"crlf":      "# Steps\r\nfoo\r\n# Expected\r\nbar",
		"mixed":     "# Steps\r\nfoo\n# Expected\r\nbar",
		"cr":        "# Steps\rfoo\r# Expected\rbar",
		"cr and lf": "# Steps\rfoo\n# Expected\r\nbar",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(want, Segment(input)); diff != "" {
				t.Errorf("Segment mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSegmentEmpty(t *testing.T) {
	got := Segment("")
	if diff := cmp.Diff([]string{""}, got); diff != "" {
		t.Errorf("Segment(\"\") mismatch (-want +got):\n%s", diff)
	}
	if headers := Extract(got); len(headers) != 0 {
		t.Errorf("empty line extracted as header: %q", headers)
	}
}

func TestSegmentBlankLines(t *testing.T) {
	got := Segment("a\r\n\r\nb\n")
	want := []string{"a", "", "b", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Segment mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "starts with marker",
			lines: []string{"# Steps", "text", "## Expected", "#tag"},
			want:  []string{"# Steps", "## Expected", "#tag"},
		},
		{
			name:  "marker elsewhere is not a header",
			lines: []string{"see issue #12", " # indented", "C# code"},
			want:  nil,
		},
		{
			name:  "kept verbatim",
			lines: []string{"# Steps  ", "# steps"},
			want:  []string{"# Steps  ", "# steps"},
		},
		{
			name:  "duplicates preserved",
			lines: []string{"# A", "# A", "x", "# A"},
			want:  []string{"# A", "# A", "# A"},
		},
		{
			name:  "no lines",
			lines: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Extract(tt.lines)); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	texts := []string{
		"# Steps\nfoo\n# Expected\nbar",
		"intro\r\n## Environment\r\n#\r\nclosing #1",
		"",
		"no headers here",
	}

	for _, text := range texts {
		once := FromText(text)
		twice := Extract(once)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Extract not idempotent for %q (-once +twice):\n%s", text, diff)
		}
	}
}

func TestContains(t *testing.T) {
	set := []string{"# Steps", "# Expected"}

	if !Contains(set, "# Steps") {
		t.Error("expected exact header to be found")
	}
	if Contains(set, "# steps") {
		t.Error("comparison must be case sensitive")
	}
	if Contains(set, "# Steps ") {
		t.Error("comparison must not trim whitespace")
	}
	if Contains(nil, "# Steps") {
		t.Error("nil set contains nothing")
	}
}
