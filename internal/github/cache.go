package github

import (
	"sync"

	"golang.org/x/oauth2"
)

// tokenCache keeps one token source per repository owner for the lifetime
// of an Auth, so installation lookups happen once per owner.
type tokenCache struct {
	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

func newTokenCache() *tokenCache {
	return &tokenCache{sources: make(map[string]oauth2.TokenSource)}
}

// getOrCreate returns the cached source for owner, creating it with create
// on a miss. Failed creations are not cached.
func (c *tokenCache) getOrCreate(owner string, create func() (oauth2.TokenSource, error)) (oauth2.TokenSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if src, ok := c.sources[owner]; ok {
		return src, nil
	}
	src, err := create()
	if err != nil {
		return nil, err
	}
	c.sources[owner] = src
	return src, nil
}

func (c *tokenCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}
