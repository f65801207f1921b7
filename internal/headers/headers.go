// Package headers splits issue and template text into lines and picks out
// the section headers used for template matching.
package headers

import "strings"

// Marker is the character a line must start with to count as a header.
const Marker = '#'

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Segment normalizes CRLF, LF and lone CR line endings and splits text into
// lines. Empty input yields a single empty line.
func Segment(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// IsHeader reports whether line starts with the header marker.
func IsHeader(line string) bool {
	return len(line) > 0 && line[0] == Marker
}

// Extract returns the header lines in order, verbatim, duplicates included.
func Extract(lines []string) []string {
	var found []string
	for _, line := range lines {
		if IsHeader(line) {
			found = append(found, line)
		}
	}
	return found
}

// FromText segments text and extracts its headers.
func FromText(text string) []string {
	return Extract(Segment(text))
}

// Contains reports whether header is present in set, by exact string match.
func Contains(set []string, header string) bool {
	for _, h := range set {
		if h == header {
			return true
		}
	}
	return false
}
