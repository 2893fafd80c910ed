package pdf

import "strings"

// minRunLines is the fewest lines a candidate table may have.
const minRunLines = 2

// denseSeparators is how many commas or tabs mark a line as tabular.
const denseSeparators = 3

// scanState is the table scanner's position relative to a run.
type scanState int

const (
	outside scanState = iota
	inside
)

// isDense reports whether line looks like a delimited table row.
func isDense(line string) bool {
	return strings.Count(line, ",") >= denseSeparators || strings.Count(line, "\t") >= denseSeparators
}

// findRuns segments lines into candidate tables. A run opens at a dense
// line and closes at the next blank line or the end of input. Dense lines
// inside a run extend it. Runs shorter than minRunLines are dropped.
func findRuns(lines []string) [][]string {
	var (
		runs  [][]string
		run   []string
		state = outside
	)

	flush := func() {
		if len(run) >= minRunLines {
			runs = append(runs, run)
		}
		run = nil
		state = outside
	}

	for _, line := range lines {
		switch state {
		case outside:
			if isDense(line) {
				run = []string{line}
				state = inside
			}
		case inside:
			if strings.TrimSpace(line) == "" {
				flush()
				continue
			}
			run = append(run, line)
		}
	}
	if state == inside {
		flush()
	}
	return runs
}
