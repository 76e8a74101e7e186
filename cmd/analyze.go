package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/naka-gawa/repo-analyzer/internal/config"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/naka-gawa/repo-analyzer/internal/gateway"
	"github.com/naka-gawa/repo-analyzer/internal/report"
	"github.com/naka-gawa/repo-analyzer/internal/usecase"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes returned by the process.
const (
	exitFailure     = 1
	exitNotFound    = 2
	exitRateLimited = 3
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [owner/repo | owner repo]",
	Short: "Analyzes a GitHub repository and prints a summary",
	Long: `Fetches repository metadata, the top contributors and the open/closed issue and
pull request counts of a public GitHub repository, prints them, and optionally exports
them as a Metric,Value CSV file.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(verbose)

		ownerFlag, _ := cmd.Flags().GetString("owner")
		repoFlag, _ := cmd.Flags().GetString("repo")
		export, _ := cmd.Flags().GetBool("export")
		output, _ := cmd.Flags().GetString("output")

		owner, repo, err := parseTarget(args, ownerFlag, repoFlag)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.WithField("api_url", cfg.APIURL).Debug("Configuration loaded")

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(cfg, logger.WithField("component", "gateway"))
		if err != nil {
			return errors.Wrap(err, "failed to create GitHub gateway")
		}
		exporter := &report.CSVExporter{Path: output}
		aggregator := usecase.NewAggregator(githubGateway, exporter, logger.WithField("component", "aggregator"))

		result, err := aggregator.Analyze(ctx, owner, repo, export)
		if result == nil {
			return err
		}
		if renderErr := report.Render(cmd.OutOrStdout(), result); renderErr != nil {
			return renderErr
		}
		if err != nil {
			return err
		}
		if export {
			path := output
			if path == "" {
				path = report.DefaultCSVPath(result.Identity)
			}
			report.PrintExported(cmd.OutOrStdout(), path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("owner", "o", "", "Repository owner (user or organization)")
	analyzeCmd.Flags().StringP("repo", "r", "", "Repository name")
	analyzeCmd.Flags().BoolP("export", "e", false, "Export the report as a CSV file")
	analyzeCmd.Flags().String("output", "", "CSV file path (default <owner>_<repo>_analysis.csv)")
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// parseTarget resolves the owner and repository from "owner/repo", "owner repo"
// or the --owner/--repo flags.
func parseTarget(args []string, ownerFlag, repoFlag string) (string, string, error) {
	owner, repo := ownerFlag, repoFlag
	switch len(args) {
	case 1:
		var ok bool
		owner, repo, ok = strings.Cut(strings.Trim(args[0], "/"), "/")
		if !ok || strings.Contains(repo, "/") {
			return "", "", errors.Wrapf(domain.ErrInvalidIdentity, "expected owner/repo, got %q", args[0])
		}
	case 2:
		owner, repo = args[0], args[1]
	}
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return "", "", errors.Wrap(domain.ErrInvalidIdentity, "specify the repository as owner/repo or with --owner and --repo")
	}
	return owner, repo, nil
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidIdentity):
		return exitNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return exitRateLimited
	default:
		return exitFailure
	}
}
