package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v60/github"
)

// Client wraps the GitHub API client with token authentication.
type Client struct {
	inner *gh.Client
}

// ClientOption configures a Client.
type ClientOption func(*gh.Client) error

// WithBaseURL points the client at another API endpoint, such as GitHub
// Enterprise or a test server.
func WithBaseURL(raw string) ClientOption {
	return func(c *gh.Client) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a GitHub API client with the given token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("github token is required")
	}
	httpClient := &http.Client{
		Transport: &tokenTransport{token: token},
	}
	inner := gh.NewClient(httpClient)
	for _, opt := range opts {
		if err := opt(inner); err != nil {
			return nil, err
		}
	}
	return &Client{inner: inner}, nil
}

// tokenTransport adds Bearer token auth to HTTP requests.
type tokenTransport struct {
	token string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

// ParseRepo splits "owner/name".
func ParseRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format %q (expected 'owner/name')", repo)
	}
	return parts[0], parts[1], nil
}
