package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hellausefulsoftware/headercheck/internal/lifecycle"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/hellausefulsoftware/headercheck/internal/templates"
	"github.com/hellausefulsoftware/headercheck/internal/tui"
	"github.com/spf13/cobra"
)

// exitNeedsInfo is the exit status when the body matches no template.
const exitNeedsInfo = 2

func newCheckCmd(opts *options) *cobra.Command {
	var (
		bodyPath    string
		templateDir string
		replyPath   string
		repoSlug    string
		login       string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check an issue body against issue templates without touching any issue",
		Long: `Check reads an issue body from a file (or - for stdin) and compares it with the issue
templates from a local directory (--templates) or from a repository (--repo owner/repo).
It prints the verdict and the comment the bot would post, and exits with status 2 when
the body needs more information.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (templateDir == "") == (repoSlug == "") {
				return errors.New("exactly one of --templates or --repo is required")
			}

			body, err := readBody(cmd.InOrStdin(), bodyPath)
			if err != nil {
				return err
			}

			var (
				source      lifecycle.Source
				owner, repo string
			)
			if templateDir != "" {
				source = templates.LocalSource{Directory: templateDir, ReplyPath: replyPath}
			} else {
				owner, repo, err = splitRepo(repoSlug)
				if err != nil {
					return err
				}
				service, err := newService(opts.cfg)
				if err != nil {
					return err
				}
				source = templates.NewRepository(service, opts.cfg.Templates.Directory, opts.cfg.Templates.ReplyPath)
			}

			controller := lifecycle.NewController(nil, source, opts.cfg.Templates.Label)
			result, err := controller.Evaluate(cmd.Context(), owner, repo, body)
			if err != nil {
				return err
			}

			logging.Debug("Check finished", "conforms", result.Verdict.Conforms(), "templates", len(result.Templates))
			fmt.Fprint(cmd.OutOrStdout(), tui.Report(tui.NewTheme(), body, result, login))

			if result.Verdict.NeedsInfo() {
				return &exitError{code: exitNeedsInfo}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bodyPath, "body", "", "File containing the issue body (- for stdin)")
	cmd.Flags().StringVar(&templateDir, "templates", "", "Local directory of issue templates")
	cmd.Flags().StringVar(&replyPath, "reply", "", "Local reply document used with --templates")
	cmd.Flags().StringVar(&repoSlug, "repo", "", "Repository to read templates from (owner/repo)")
	cmd.Flags().StringVar(&login, "login", "author", "Login to greet in the guidance preview")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func readBody(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(data), nil
}

func splitRepo(slug string) (string, string, error) {
	owner, repo, ok := strings.Cut(slug, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", slug)
	}
	return owner, repo, nil
}
