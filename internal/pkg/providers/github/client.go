package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

const defaultAPIBaseURL = "https://api.github.com"

// Client issues authenticated read-only calls against the GitHub REST API.
type Client struct {
	Token      string
	APIBaseURL string
	HTTPClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		Token:      strings.TrimSpace(token),
		APIBaseURL: defaultAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Repo is one repository as returned by the repos listings.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	HTMLURL     string `json:"html_url"`
	Homepage    string `json:"homepage"`
	Private     bool   `json:"private"`
	Fork        bool   `json:"fork"`
	Language    string `json:"language"`
}

// Deployment is one deployment record of a repository.
type Deployment struct {
	ID          int64     `json:"id"`
	Ref         string    `json:"ref"`
	SHA         string    `json:"sha"`
	Environment string    `json:"environment"`
	CreatedAt   time.Time `json:"created_at"`
}

// DeploymentStatus is one status entry of a deployment, newest first.
type DeploymentStatus struct {
	State          string    `json:"state"`
	EnvironmentURL string    `json:"environment_url"`
	TargetURL      string    `json:"target_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// URL returns the best public URL the status carries.
func (s *DeploymentStatus) URL() string {
	if s.EnvironmentURL != "" {
		return s.EnvironmentURL
	}
	return s.TargetURL
}

// ListUserRepos returns the public repositories of a username. The username is
// validated before any request; malformed names degrade to an empty slice, as
// do request failures.
func (c *Client) ListUserRepos(ctx context.Context, username string) []Repo {
	username = strings.TrimSpace(username)
	if !models.ValidGithubUsername(username) {
		return nil
	}
	var repos []Repo
	path := fmt.Sprintf("/users/%s/repos", url.PathEscape(username))
	q := url.Values{}
	q.Set("per_page", "100")
	q.Set("sort", "updated")
	if err := c.getJSON(ctx, path, q, &repos); err != nil {
		log.Printf("github: repo listing for %s failed: %v", username, err)
		return nil
	}
	return repos
}

// ListAuthenticatedRepos returns the repositories of the token owner.
// Failures are logged and degrade to an empty slice.
func (c *Client) ListAuthenticatedRepos(ctx context.Context) []Repo {
	var repos []Repo
	q := url.Values{}
	q.Set("per_page", "100")
	q.Set("sort", "updated")
	if err := c.getJSON(ctx, "/user/repos", q, &repos); err != nil {
		log.Printf("github: authenticated repo listing failed: %v", err)
		return nil
	}
	return repos
}

// ListDeployments returns the deployments of owner/repo, newest first as
// returned by the API. Failures are logged and degrade to an empty slice.
func (c *Client) ListDeployments(ctx context.Context, owner, repo string) []Deployment {
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return nil
	}
	var deployments []Deployment
	path := fmt.Sprintf("/repos/%s/%s/deployments", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.getJSON(ctx, path, nil, &deployments); err != nil {
		log.Printf("github: deployment listing for %s/%s failed: %v", owner, repo, err)
		return nil
	}
	return deployments
}

// LatestDeploymentStatus returns the newest status of one deployment, or nil
// when the deployment has no statuses or the call fails.
func (c *Client) LatestDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64) *DeploymentStatus {
	var statuses []DeploymentStatus
	path := fmt.Sprintf("/repos/%s/%s/deployments/%d/statuses",
		url.PathEscape(owner), url.PathEscape(repo), deploymentID)
	q := url.Values{}
	q.Set("per_page", "1")
	if err := c.getJSON(ctx, path, q, &statuses); err != nil {
		log.Printf("github: deployment status lookup for %s/%s#%d failed: %v", owner, repo, deploymentID, err)
		return nil
	}
	if len(statuses) == 0 {
		return nil
	}
	return &statuses[0]
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u, err := url.Parse(strings.TrimRight(c.APIBaseURL, "/") + path)
	if err != nil {
		return err
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("github request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
