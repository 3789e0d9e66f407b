// Example program demonstrating the gitview library API.
//
// Run from the repo root against a directory of repositories:
//
//	go run ./example/ /srv/git
//
// With a second argument the example also serves the web viewer:
//
//	go run ./example/ /srv/git :8888
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/MyCarrier-DevOps/go-gitview/pkg/gitview"
)

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	v := gitview.New(gitview.Options{Root: root})

	repos, err := v.List(gitview.SortByUpdated)
	if err != nil {
		log.Fatalf("listing repositories failed: %v", err)
	}
	if len(repos) == 0 {
		log.Fatalf("no repositories under %s", root)
	}

	for _, r := range repos {
		fmt.Printf("%-30s %s %s\n", r.Name, r.Head.ShortSha, r.Head.Summary)
	}
	fmt.Println()

	printTree(v, repos[0].Name)

	if len(os.Args) > 2 {
		h, err := v.Handler()
		if err != nil {
			log.Fatalf("creating handler failed: %v", err)
		}
		log.Printf("serving %s on %s", root, os.Args[2])
		if err := http.ListenAndServe(os.Args[2], h); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}
}

func printTree(v *gitview.Viewer, repo string) {
	tree, err := v.Tree(repo, "", "")
	if err != nil {
		log.Fatalf("reading tree failed: %v", err)
	}
	count, err := v.CountCommits(repo, tree.Rev)
	if err != nil {
		log.Fatalf("counting commits failed: %v", err)
	}

	fmt.Printf("=== %s @ %s (%d commits) ===\n", repo, tree.Rev, count)
	for _, e := range tree.Entries {
		name := e.Name
		if e.Kind == "tree" {
			name += "/"
		}
		fmt.Printf("%-40s %d\n", name, e.Size)
	}
}
