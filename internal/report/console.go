// Package report renders analysis reports for the terminal and exports them
// to CSV files.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// ContributionSummary describes the contributions of the retained contributors.
type ContributionSummary struct {
	Total  float64
	Mean   float64
	Median float64
}

// SummarizeContributions computes total, mean and median contributions.
// It returns false when there are no contributors.
func SummarizeContributions(contributors []domain.Contributor) (ContributionSummary, bool, error) {
	if len(contributors) == 0 {
		return ContributionSummary{}, false, nil
	}
	data := make(stats.Float64Data, 0, len(contributors))
	for _, c := range contributors {
		data = append(data, float64(c.Contributions))
	}
	total, err := stats.Sum(data)
	if err != nil {
		return ContributionSummary{}, false, errors.Wrap(err, "sum contributions")
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return ContributionSummary{}, false, errors.Wrap(err, "mean contributions")
	}
	median, err := stats.Median(data)
	if err != nil {
		return ContributionSummary{}, false, errors.Wrap(err, "median contributions")
	}
	return ContributionSummary{Total: total, Mean: mean, Median: median}, true, nil
}

// Render writes the human-readable report to w.
func Render(w io.Writer, r *domain.AnalysisReport) error {
	out := pterm.DefaultSection.Sprintln("📊 Repository analysis: " + r.Identity.String())
	out += pterm.Info.Sprintfln("📘 Repository: %s", r.Summary.FullName)
	out += pterm.Info.Sprintfln("⭐ Stars: %d", r.Summary.Stars)
	out += pterm.Info.Sprintfln("🍴 Forks: %d", r.Summary.Forks)
	out += pterm.Info.Sprintfln("🐞 Open Issues (Raw): %d", r.Summary.OpenIssuesRaw)
	out += pterm.Info.Sprintfln("   ├─ Open issues: %d", r.Issues.Open)
	out += pterm.Info.Sprintfln("   └─ Closed issues: %d", r.Issues.Closed)
	out += pterm.Info.Sprintfln("🔀 Pull requests")
	out += pterm.Info.Sprintfln("   ├─ Open PRs: %d", r.PullRequests.Open)
	out += pterm.Info.Sprintfln("   └─ Closed/Merged PRs: %d", r.PullRequests.Closed)

	if len(r.Contributors) == 0 {
		out += pterm.Warning.Sprintln("👥 No contributors reported")
		_, err := io.WriteString(w, out)
		return errors.Wrap(err, "write report")
	}

	data := pterm.TableData{{"#", "Contributor", "Contributions"}}
	for i, c := range r.Contributors {
		data = append(data, []string{strconv.Itoa(i + 1), c.Login, strconv.Itoa(c.Contributions)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render contributors table")
	}
	out += pterm.Info.Sprintfln("👥 Top %d contributors", len(r.Contributors))
	out += table + "\n"

	summary, ok, err := SummarizeContributions(r.Contributors)
	if err != nil {
		return err
	}
	if ok {
		out += pterm.Info.Sprintfln("   Total: %.0f | Mean: %.1f | Median: %.1f", summary.Total, summary.Mean, summary.Median)
	}

	_, err = io.WriteString(w, out)
	return errors.Wrap(err, "write report")
}

// PrintExported announces a successful export.
func PrintExported(w io.Writer, path string) {
	fmt.Fprint(w, pterm.Success.Sprintfln("✅ Report exported to %s", path))
}
