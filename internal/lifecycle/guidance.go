package lifecycle

import (
	"fmt"
	"strings"

	"github.com/hellausefulsoftware/headercheck/internal/templates"
)

// Guidance composes the comment asking login to follow a template.
func Guidance(login, reply string, verdict templates.Verdict, tmpls []templates.Template) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello @%s!\n", login)
	if reply != "" {
		b.WriteString(reply)
		if !strings.HasSuffix(reply, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if guess, ok := verdict.BestGuess(); ok {
		fmt.Fprintf(&b, "It looks like you used the **%s** template. Please make sure your issue includes these headers:\n\n", guess.DisplayName())
		writeHeaders(&b, guess.Headers)
		return b.String()
	}

	b.WriteString("We could not detect which issue template you used. Please use one of the following:\n")
	for _, tmpl := range tmpls {
		fmt.Fprintf(&b, "\n**%s**\n\n", tmpl.DisplayName())
		writeHeaders(&b, tmpl.Headers)
	}
	return b.String()
}

func writeHeaders(b *strings.Builder, hdrs []string) {
	for _, h := range hdrs {
		fmt.Fprintf(b, "- %s\n", codeSpan(h))
	}
}

// codeSpan wraps s in a backtick fence longer than any backtick run inside
// it. Content touching the fence is padded with a space, which Markdown
// strips again.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if longest > 0 {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
