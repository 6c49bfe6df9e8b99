// Package validation checks a generated dataset for internal consistency:
// manifest/file pairing, label syntax, class-id bounds, and coordinate
// ranges. It backs the `synthgen validate` command.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-synthgen/pkg/dataset"
)

// Issue represents one validation finding with location metadata.
type Issue struct {
	Sample  string `json:"sample,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Report captures the validation outcome for a dataset directory.
type Report struct {
	Valid          bool                  `json:"valid"`
	Samples        int                   `json:"samples"`
	PerSplit       map[dataset.Split]int `json:"per_split"`
	BackgroundOnly int                   `json:"background_only"`
	Boxes          int                   `json:"boxes"`
	Issues         []Issue               `json:"issues,omitempty"`
}

func (r *Report) addIssue(sample, path, format string, args ...any) {
	r.Valid = false
	r.Issues = append(r.Issues, Issue{
		Sample:  sample,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// ValidateDataset checks every manifest record of the dataset rooted at dir.
// It returns an error only when the dataset cannot be read at all; findings
// about individual samples land in the report.
func ValidateDataset(dir string) (Report, error) {
	report := Report{Valid: true, PerSplit: map[dataset.Split]int{}}

	classes, err := readClasses(filepath.Join(dir, dataset.ClassesName))
	if err != nil {
		return Report{}, err
	}

	records, err := dataset.ReadManifest(filepath.Join(dir, dataset.ManifestName))
	if err != nil {
		return Report{}, err
	}
	if len(records) == 0 {
		return Report{}, fmt.Errorf("validation: no samples recorded in %s", dir)
	}

	seen := map[string]bool{}
	for i, rec := range records {
		if rec.Index != i {
			report.addIssue(rec.Name, "", "manifest index %d out of order (expected %d)", rec.Index, i)
		}
		if seen[rec.Name] {
			report.addIssue(rec.Name, "", "duplicate sample name")
		}
		seen[rec.Name] = true

		report.Samples++
		report.PerSplit[rec.Split]++

		if _, err := os.Stat(filepath.Join(dir, rec.ImagePath)); err != nil {
			report.addIssue(rec.Name, rec.ImagePath, "image missing: %v", err)
		}

		if rec.BackgroundOnly {
			report.BackgroundOnly++
			if rec.LabelPath != "" {
				report.addIssue(rec.Name, rec.LabelPath, "background-only sample has a label path")
			}
			continue
		}
		if rec.LabelPath == "" {
			report.addIssue(rec.Name, "", "sample with %d boxes has no label path", rec.Boxes)
			continue
		}

		boxes, issues := checkLabelFile(filepath.Join(dir, rec.LabelPath), len(classes))
		for _, msg := range issues {
			report.addIssue(rec.Name, rec.LabelPath, "%s", msg)
		}
		if boxes != rec.Boxes {
			report.addIssue(rec.Name, rec.LabelPath,
				"manifest records %d boxes, label file has %d", rec.Boxes, boxes)
		}
		report.Boxes += boxes
	}

	return report, nil
}

func readClasses(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validation: read class table: %w", err)
	}
	var classes []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			return nil, fmt.Errorf("validation: class table has an empty line")
		}
		classes = append(classes, line)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("validation: class table is empty")
	}
	return classes, nil
}

// checkLabelFile parses one YOLO label file and reports the box count plus
// any findings: malformed lines, out-of-range class ids or coordinates,
// non-positive extents.
func checkLabelFile(path string, numClasses int) (int, []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, []string{fmt.Sprintf("label missing: %v", err)}
	}

	var issues []string
	boxes := 0
	for n, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			issues = append(issues, fmt.Sprintf("line %d: empty", n+1))
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			issues = append(issues, fmt.Sprintf("line %d: expected 5 fields, got %d", n+1, len(fields)))
			continue
		}

		classID, err := strconv.Atoi(fields[0])
		if err != nil || classID < 0 || classID >= numClasses {
			issues = append(issues, fmt.Sprintf("line %d: class id %q out of range [0,%d)", n+1, fields[0], numClasses))
		}
		for i, name := range []string{"x_center", "y_center", "width", "height"} {
			v, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil || v < 0 || v > 1 {
				issues = append(issues, fmt.Sprintf("line %d: %s %q outside [0,1]", n+1, name, fields[i+1]))
				continue
			}
			if i >= 2 && v <= 0 {
				issues = append(issues, fmt.Sprintf("line %d: %s must be positive", n+1, name))
			}
		}
		boxes++
	}
	return boxes, issues
}
