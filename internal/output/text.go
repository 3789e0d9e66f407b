package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"

	"github.com/dustin/go-humanize"
)

// WriteTable writes one aligned row per repository: name, short head SHA,
// relative update time and head summary. now anchors relative times.
func WriteTable(w io.Writer, items []discovery.Item, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			item.Name,
			item.Head.ShortSha(),
			humanize.RelTime(item.Head.When, now, "ago", "from now"),
			item.Head.Summary(),
		)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteNames writes one repository name per line.
func WriteNames(w io.Writer, items []discovery.Item) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item.Name); err != nil {
			return err
		}
	}
	return nil
}
