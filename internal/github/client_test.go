package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gh "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}

func clearAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_APP_ID", "")
	t.Setenv("GH_APP_PRIVATE_KEY", "")
	t.Setenv("GITHUB_API_URL", "")
}

func TestResolveString_FlagTakesPrecedence(t *testing.T) {
	t.Setenv("TEST_VAR", "env_value")
	require.Equal(t, "flag_value", resolveString("flag_value", "TEST_VAR"))
}

func TestResolveString_FallsBackToEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "env_value")
	require.Equal(t, "env_value", resolveString("", "TEST_VAR"))
}

func TestResolveString_ReturnsEmptyWhenBothEmpty(t *testing.T) {
	os.Unsetenv("TEST_VAR_EMPTY")
	require.Equal(t, "", resolveString("", "TEST_VAR_EMPTY"))
}

func TestNewAuth_NoCredentials(t *testing.T) {
	clearAuthEnv(t)

	_, err := NewAuth(CredentialConfig{})
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewAuth_AppIDWithoutKey(t *testing.T) {
	clearAuthEnv(t)

	_, err := NewAuth(CredentialConfig{AppID: 12345})
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewAuth_InvalidAppIDEnv(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GH_APP_ID", "not-a-number")

	_, err := NewAuth(CredentialConfig{})
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewAuth_InvalidBaseURL(t *testing.T) {
	clearAuthEnv(t)

	_, err := NewAuth(CredentialConfig{Token: "x", BaseURL: "::not a url"})
	require.Error(t, err)
}

func TestAuthFor_Token(t *testing.T) {
	clearAuthEnv(t)
	a, err := NewAuth(CredentialConfig{Token: "ghp_test_token"})
	require.NoError(t, err)
	require.Equal(t, "github.com", a.Host())

	method, err := a.AuthFor(context.Background(), "https://github.com/org/repo.git")
	require.NoError(t, err)
	basic, ok := method.(*githttp.BasicAuth)
	require.True(t, ok)
	require.Equal(t, "x-access-token", basic.Username)
	require.Equal(t, "ghp_test_token", basic.Password)
}

func TestAuthFor_TokenFromEnv(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_env_token")

	a, err := NewAuth(CredentialConfig{})
	require.NoError(t, err)
	method, err := a.AuthFor(context.Background(), "https://github.com/org/repo")
	require.NoError(t, err)
	require.Equal(t, "ghp_env_token", method.(*githttp.BasicAuth).Password)
}

func TestAuthFor_OtherRemotesGetNothing(t *testing.T) {
	clearAuthEnv(t)
	a, err := NewAuth(CredentialConfig{Token: "ghp"})
	require.NoError(t, err)

	for _, remote := range []string{
		"https://gitlab.com/org/repo.git",
		"git@github.com:org/repo.git",
		"ssh://git@github.com/org/repo.git",
		"/srv/mirrors/repo.git",
	} {
		method, err := a.AuthFor(context.Background(), remote)
		require.NoError(t, err, remote)
		require.Nil(t, method, remote)
	}
}

func TestAuthFor_EnterpriseHost(t *testing.T) {
	clearAuthEnv(t)
	a, err := NewAuth(CredentialConfig{Token: "ghe", BaseURL: "https://ghe.example.com/api/v3"})
	require.NoError(t, err)
	require.Equal(t, "ghe.example.com", a.Host())

	method, err := a.AuthFor(context.Background(), "https://ghe.example.com/team/app.git")
	require.NoError(t, err)
	require.NotNil(t, method)

	method, err = a.AuthFor(context.Background(), "https://github.com/team/app.git")
	require.NoError(t, err)
	require.Nil(t, method)
}

func TestAuthFor_AppBadKeyFile(t *testing.T) {
	clearAuthEnv(t)
	a, err := NewAuth(CredentialConfig{AppID: 12345, AppKeyPath: "/nonexistent/key.pem"})
	require.NoError(t, err)

	_, err = a.AuthFor(context.Background(), "https://github.com/testorg/repo.git")
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating GitHub App transport")
	require.Zero(t, a.sources.size(), "failures are not cached")
}

func TestAuthFor_AppIDFromEnv(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GH_APP_ID", "99999")
	t.Setenv("GH_APP_PRIVATE_KEY", "/nonexistent/key.pem")

	a, err := NewAuth(CredentialConfig{})
	require.NoError(t, err)
	_, err = a.AuthFor(context.Background(), "https://github.com/testorg/repo.git")
	require.Contains(t, err.Error(), "creating GitHub App transport")
}

func TestAuthFor_AppNeedsOwner(t *testing.T) {
	clearAuthEnv(t)
	a, err := NewAuth(CredentialConfig{AppID: 1, AppKeyPath: "/k.pem"})
	require.NoError(t, err)

	_, err = a.AuthFor(context.Background(), "https://github.com/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner")
}

func TestTokenCache(t *testing.T) {
	c := newTokenCache()
	calls := 0
	create := func() (oauth2.TokenSource, error) {
		calls++
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}), nil
	}

	_, err := c.getOrCreate("org", create)
	require.NoError(t, err)
	_, err = c.getOrCreate("org", create)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	_, err = c.getOrCreate("bad", func() (oauth2.TokenSource, error) { return nil, errors.New("nope") })
	require.Error(t, err)
	require.Equal(t, 1, c.size())
}

func TestHostFor(t *testing.T) {
	host, err := hostFor("")
	require.NoError(t, err)
	require.Equal(t, "github.com", host)

	host, err = hostFor("https://api.github.com/")
	require.NoError(t, err)
	require.Equal(t, "github.com", host)

	host, err = hostFor("https://ghe.example.com/api/v3")
	require.NoError(t, err)
	require.Equal(t, "ghe.example.com", host)
}

func TestOwnerOf(t *testing.T) {
	require.Equal(t, "org", ownerOf("/org/repo.git"))
	require.Equal(t, "org", ownerOf("org/repo"))
	require.Equal(t, "", ownerOf("/"))
}

func TestFindInstallation_Found(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/app/installations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, []map[string]interface{}{
			{
				"id":      int64(111),
				"account": map[string]interface{}{"login": "other-org"},
			},
			{
				"id":      int64(222),
				"account": map[string]interface{}{"login": "target-org"},
			},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)

	id, err := findInstallation(context.Background(), client, "target-org")
	require.NoError(t, err)
	require.Equal(t, int64(222), id)
}

func TestFindInstallation_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/app/installations", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, []map[string]interface{}{
			{
				"id":      int64(111),
				"account": map[string]interface{}{"login": "other-org"},
			},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)

	_, err = findInstallation(context.Background(), client, "missing-org")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no GitHub App installation found")
}

func TestFindInstallation_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/app/installations", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := gh.NewClient(nil).WithEnterpriseURLs(server.URL+"/", server.URL+"/")
	require.NoError(t, err)

	_, err = findInstallation(context.Background(), client, "any-org")
	require.Error(t, err)
	require.Contains(t, err.Error(), "listing GitHub App installations")
}
