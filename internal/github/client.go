package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the GitHub REST API root
const DefaultBaseURL = "https://api.github.com"

// Release represents a GitHub release
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Asset is a file attached to a release
type Asset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// FindAsset returns the first asset accepted by match, trying each matcher
// in order
func (r *Release) FindAsset(matchers ...func(name string) bool) (*Asset, bool) {
	for _, match := range matchers {
		for i := range r.Assets {
			if match(r.Assets[i].Name) {
				return &r.Assets[i], true
			}
		}
	}
	return nil, false
}

// Client handles GitHub API requests
type Client struct {
	owner      string
	repo       string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new GitHub API client
func NewClient(owner, repo string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		owner:      owner,
		repo:       repo,
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
	}
}

// ParseRepo splits "owner/repo"
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.Trim(s, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q (expected owner/repo)", s)
	}
	return owner, repo, nil
}

// SetBaseURL points the client at another API root (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// LatestRelease fetches the newest published, non-prerelease release
func (c *Client) LatestRelease() (*Release, error) {
	return c.getRelease(fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo))
}

// ReleaseByTag fetches the release for tag
func (c *Client) ReleaseByTag(tag string) (*Release, error) {
	return c.getRelease(fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, tag))
}

func (c *Client) getRelease(url string) (*Release, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch release: HTTP %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}

	return &release, nil
}
