package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/naka-gawa/repo-analyzer/internal/domain"
	"github.com/pkg/errors"
)

// CSVExporter writes reports as two-column Metric/Value CSV files.
type CSVExporter struct {
	// Path is the destination file. When empty, DefaultCSVPath is used.
	Path string
}

// DefaultCSVPath returns the file name used when no explicit path is given.
func DefaultCSVPath(id domain.RepositoryIdentity) string {
	return id.Owner + "_" + id.Name + "_analysis.csv"
}

// Export writes the report to the configured file, replacing any existing content.
func (e *CSVExporter) Export(r *domain.AnalysisReport) error {
	path := e.Path
	if path == "" {
		path = DefaultCSVPath(r.Identity)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteCSV(f, r); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// WriteCSV writes the Metric/Value rows of r to w.
func WriteCSV(w io.Writer, r *domain.AnalysisReport) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(r)); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// Rows returns the tabular form of r, header first.
func Rows(r *domain.AnalysisReport) [][]string {
	itoa := strconv.Itoa
	rows := [][]string{
		{"Metric", "Value"},
		{"Repository", r.Summary.FullName},
		{"Stars", itoa(r.Summary.Stars)},
		{"Forks", itoa(r.Summary.Forks)},
		{"Open Issues (Raw)", itoa(r.Summary.OpenIssuesRaw)},
		{"Open Issues", itoa(r.Issues.Open)},
		{"Closed Issues", itoa(r.Issues.Closed)},
		{"Open PRs", itoa(r.PullRequests.Open)},
		{"Closed/Merged PRs", itoa(r.PullRequests.Closed)},
	}
	for _, c := range r.Contributors {
		rows = append(rows, []string{"Contributor - " + c.Login, itoa(c.Contributions)})
	}
	return rows
}
