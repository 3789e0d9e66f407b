// Package github resolves GitHub credentials for fetching repository
// mirrors over https: a personal or workflow token, or a GitHub App whose
// installation for the remote's owner is looked up on demand.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// tokenUsername is the basic-auth user GitHub expects alongside an access
// token.
const tokenUsername = "x-access-token"

const defaultHost = "github.com"

// ErrNoCredentials is returned by NewAuth when neither a token nor GitHub
// App credentials are configured.
var ErrNoCredentials = errors.New("no GitHub authentication provided: set GITHUB_TOKEN, use --github-token, or provide --github-app-id and --github-app-key")

// CredentialConfig holds the credentials used to authenticate fetches.
type CredentialConfig struct {
	// Token is a GitHub personal access token or GITHUB_TOKEN.
	// Falls back to GITHUB_TOKEN env var if empty.
	Token string

	// AppID is the GitHub App ID for app authentication.
	// Falls back to GH_APP_ID env var if zero.
	AppID int64

	// AppKeyPath is the path to a GitHub App private key PEM file.
	// Falls back to GH_APP_PRIVATE_KEY env var if empty.
	AppKeyPath string

	// BaseURL is a custom GitHub API base URL for GitHub Enterprise.
	// Falls back to GITHUB_API_URL env var if empty.
	BaseURL string
}

// Auth hands out go-git credentials for https remotes on the configured
// GitHub host. Remotes elsewhere get no credentials.
type Auth struct {
	host    string
	baseURL string

	static oauth2.TokenSource

	appID   int64
	keyPath string
	sources *tokenCache
}

// NewAuth resolves credentials. Auth resolution order: Token flag →
// GITHUB_TOKEN env → App credentials → ErrNoCredentials.
func NewAuth(cfg CredentialConfig) (*Auth, error) {
	baseURL := resolveString(cfg.BaseURL, "GITHUB_API_URL")
	host, err := hostFor(baseURL)
	if err != nil {
		return nil, err
	}
	a := &Auth{host: host, baseURL: baseURL, sources: newTokenCache()}

	if token := resolveString(cfg.Token, "GITHUB_TOKEN"); token != "" {
		a.static = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return a, nil
	}

	appID := cfg.AppID
	if appID == 0 {
		if s := os.Getenv("GH_APP_ID"); s != "" {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				appID = v
			}
		}
	}
	keyPath := resolveString(cfg.AppKeyPath, "GH_APP_PRIVATE_KEY")
	if appID != 0 && keyPath != "" {
		a.appID = appID
		a.keyPath = keyPath
		return a, nil
	}

	return nil, ErrNoCredentials
}

// Host returns the git host credentials are offered to.
func (a *Auth) Host() string {
	return a.host
}

// AuthFor returns credentials for fetching remoteURL, or nil when the
// remote is not an https URL on the GitHub host.
func (a *Auth) AuthFor(ctx context.Context, remoteURL string) (transport.AuthMethod, error) {
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("parsing remote URL: %w", err)
	}
	if ep.Protocol != "https" || !strings.EqualFold(ep.Host, a.host) {
		return nil, nil
	}

	src, err := a.tokenSource(ctx, ownerOf(ep.Path))
	if err != nil {
		return nil, err
	}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("obtaining GitHub token: %w", err)
	}
	return &githttp.BasicAuth{Username: tokenUsername, Password: tok.AccessToken}, nil
}

func (a *Auth) tokenSource(ctx context.Context, owner string) (oauth2.TokenSource, error) {
	if a.static != nil {
		return a.static, nil
	}
	if owner == "" {
		return nil, fmt.Errorf("cannot determine repository owner for GitHub App authentication")
	}
	return a.sources.getOrCreate(owner, func() (oauth2.TokenSource, error) {
		return a.newAppTokenSource(ctx, owner)
	})
}

func (a *Auth) newAppTokenSource(ctx context.Context, owner string) (oauth2.TokenSource, error) {
	// Create an app-level transport to discover the installation ID.
	appTransport, err := ghinstallation.NewAppsTransportKeyFromFile(http.DefaultTransport, a.appID, a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub App transport: %w", err)
	}
	if a.baseURL != "" {
		appTransport.BaseURL = a.baseURL
	}

	appClient := gh.NewClient(&http.Client{Transport: appTransport})
	if a.baseURL != "" {
		appClient, err = appClient.WithEnterpriseURLs(a.baseURL, a.baseURL)
		if err != nil {
			return nil, fmt.Errorf("setting enterprise URL: %w", err)
		}
	}

	installationID, err := findInstallation(ctx, appClient, owner)
	if err != nil {
		return nil, err
	}

	// Create an installation-level transport with the discovered ID.
	installTransport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, a.appID, installationID, a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("creating installation transport: %w", err)
	}
	if a.baseURL != "" {
		installTransport.BaseURL = a.baseURL
	}
	return &installationTokenSource{ctx: ctx, tr: installTransport}, nil
}

// installationTokenSource adapts an installation transport, which caches
// and refreshes its own token, to oauth2.TokenSource.
type installationTokenSource struct {
	ctx context.Context
	tr  *ghinstallation.Transport
}

func (s *installationTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.tr.Token(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "token"}, nil
}

// findInstallation finds the GitHub App installation for the given owner.
func findInstallation(ctx context.Context, client *gh.Client, owner string) (int64, error) {
	opts := &gh.ListOptions{PerPage: 100}

	for {
		installations, resp, err := client.Apps.ListInstallations(ctx, opts)
		if err != nil {
			return 0, fmt.Errorf("listing GitHub App installations: %w", err)
		}

		for _, inst := range installations {
			if strings.EqualFold(inst.GetAccount().GetLogin(), owner) {
				return inst.GetID(), nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return 0, fmt.Errorf("no GitHub App installation found for owner %q", owner)
}

// hostFor returns the git host served by the API at baseURL.
func hostFor(baseURL string) (string, error) {
	if baseURL == "" {
		return defaultHost, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid GitHub API URL %q", baseURL)
	}
	return strings.TrimPrefix(u.Hostname(), "api."), nil
}

// ownerOf returns the first segment of a remote path like /owner/repo.git.
func ownerOf(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// resolveString returns the flag value if non-empty, otherwise the env var value.
func resolveString(flag, envKey string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envKey)
}
