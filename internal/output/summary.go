package output

import (
	"fmt"
	"io"

	"github.com/MyCarrier-DevOps/go-gitview/internal/fetch"
)

// WriteFetchSummary writes a one-line tally of fetch results, e.g.
// "4 repositories: 2 fetched, 1 up to date, 1 failed".
func WriteFetchSummary(w io.Writer, results []fetch.Result) error {
	counts := map[fetch.Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}

	noun := "repositories"
	if len(results) == 1 {
		noun = "repository"
	}
	line := fmt.Sprintf("%d %s", len(results), noun)

	sep := ": "
	for _, s := range []fetch.Status{fetch.StatusFetched, fetch.StatusUpToDate, fetch.StatusNoRemote, fetch.StatusFailed} {
		if counts[s] == 0 {
			continue
		}
		line += fmt.Sprintf("%s%d %s", sep, counts[s], s)
		sep = ", "
	}

	_, err := fmt.Fprintln(w, line)
	return err
}

// FailedCount returns how many results failed.
func FailedCount(results []fetch.Result) int {
	n := 0
	for _, r := range results {
		if r.Status == fetch.StatusFailed {
			n++
		}
	}
	return n
}
