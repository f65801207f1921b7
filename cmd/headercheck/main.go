package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hellausefulsoftware/headercheck/internal/config"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// options holds the persistent flags and the configuration they resolve to.
type options struct {
	configPath string
	logLevel   string
	logJSON    bool
	logFile    string

	cfg *config.Config
}

func main() {
	// Initialize logger with default configuration
	logging.Initialize(nil)

	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "headercheck",
		Short: "Checks that GitHub issues follow the repository's issue templates",
		Long: `headercheck compares the markdown headers of an issue body with the headers of the
repository's issue templates. Issues that match no template get a guidance comment and the
more-info-required label; both are taken back once the issue is edited to conform.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(newServeCmd(opts), newCheckCmd(opts), newVersionCmd())
	return rootCmd
}

// load reads the configuration and configures logging; flags win over config.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Logging.JSON = o.logJSON
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = o.logFile
	}

	logging.Initialize(&logging.Config{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		Output:     os.Stderr,
		JSONFormat: cfg.Logging.JSON,
		File:       cfg.Logging.File,
	})

	o.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "headercheck %s\n", version)
		},
	}
}
