// Package output writes command results for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MyCarrier-DevOps/go-gitview/internal/discovery"
)

// RepoEntry is the JSON shape of one repository list row.
type RepoEntry struct {
	Name    string    `json:"name"`
	Bare    bool      `json:"bare"`
	Head    string    `json:"head"`
	Summary string    `json:"summary"`
	Author  string    `json:"author"`
	Updated time.Time `json:"updated"`
}

// NewRepoEntry converts a listing item.
func NewRepoEntry(item discovery.Item) RepoEntry {
	return RepoEntry{
		Name:    item.Name,
		Bare:    item.Bare,
		Head:    item.Head.Sha,
		Summary: item.Head.Summary(),
		Author:  item.Head.AuthorName,
		Updated: item.Head.When.UTC(),
	}
}

// WriteJSON writes the repository list as pretty-printed JSON.
func WriteJSON(w io.Writer, items []discovery.Item) error {
	entries := make([]RepoEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, NewRepoEntry(item))
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling repositories to JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON output: %w", err)
	}
	_, err = w.Write([]byte("\n"))
	return err
}
