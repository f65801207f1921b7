package tui

import (
	"fmt"
	"strings"

	"github.com/hellausefulsoftware/headercheck/internal/headers"
	"github.com/hellausefulsoftware/headercheck/internal/lifecycle"
	"github.com/hellausefulsoftware/headercheck/internal/templates"
)

// Report renders a check result: the verdict, every template with the
// headers the body is missing, and the guidance the bot would post.
func Report(theme *ColorblindFriendlyTheme, body string, result lifecycle.Result, login string) string {
	userHeaders := headers.FromText(body)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Issue template check"))
	b.WriteString("\n")

	if result.Verdict.Conforms() {
		b.WriteString(theme.Pass.Render("✔ The issue follows a template"))
	} else {
		b.WriteString(theme.Fail.Render("✘ The issue needs more information"))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d\n", theme.Subtitle.Render("Headers found:"), len(userHeaders))
	if len(result.Templates) == 0 {
		b.WriteString(theme.Faint.Render("No templates found"))
		b.WriteString("\n")
	}
	for _, tmpl := range result.Templates {
		b.WriteString(templateLine(theme, tmpl, userHeaders))
	}

	if result.Verdict.NeedsInfo() {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Comment that would be posted:"))
		b.WriteString("\n")
		guidance := lifecycle.Guidance(login, result.Reply, result.Verdict, result.Templates)
		b.WriteString(theme.Panel.Render(strings.TrimRight(guidance, "\n")))
		b.WriteString("\n")
	}

	return b.String()
}

func templateLine(theme *ColorblindFriendlyTheme, tmpl templates.Template, userHeaders []string) string {
	var missing []string
	for _, h := range tmpl.Headers {
		if !headers.Contains(userHeaders, h) {
			missing = append(missing, h)
		}
	}

	var b strings.Builder
	if len(missing) == 0 {
		fmt.Fprintf(&b, "  %s %s\n", theme.Pass.Render("✔"), theme.Bold.Render(tmpl.DisplayName()))
		return b.String()
	}

	fmt.Fprintf(&b, "  %s %s %s\n",
		theme.Fail.Render("✘"),
		theme.Bold.Render(tmpl.DisplayName()),
		theme.Faint.Render(fmt.Sprintf("(%d of %d headers missing)", len(missing), len(tmpl.Headers))))
	for _, h := range missing {
		fmt.Fprintf(&b, "      %s\n", theme.Header.Render(h))
	}
	return b.String()
}
