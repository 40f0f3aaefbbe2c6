package vercel

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
)

const defaultAPIBaseURL = "https://api.vercel.com"

// Client issues authenticated read-only calls against the Vercel REST API.
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

// Project is one Vercel project as returned by GET /v9/projects.
type Project struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Link *ProjectLink `json:"link"`
}

// ProjectLink is the git integration metadata attached to a project.
type ProjectLink struct {
	Type string `json:"type"`
	Repo string `json:"repo"`
	Org  string `json:"org"`
}

// LinkedRepoName returns the repository name the project is linked to, or ""
// when no git link is present.
func (p *Project) LinkedRepoName() string {
	if p.Link == nil {
		return ""
	}
	return strings.TrimSpace(p.Link.Repo)
}

// Deployment is one Vercel deployment as returned by GET /v6/deployments.
type Deployment struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	State     string            `json:"state"`
	Target    string            `json:"target"`
	CreatedAt int64             `json:"createdAt"`
	Meta      map[string]string `json:"meta"`
}

// Branch returns the git branch recorded in the deployment metadata.
func (d *Deployment) Branch() string {
	return d.Meta["githubCommitRef"]
}

// CommitSHA returns the git commit recorded in the deployment metadata.
func (d *Deployment) CommitSHA() string {
	return d.Meta["githubCommitSha"]
}

// CreatedTime converts the millisecond epoch timestamp.
func (d *Deployment) CreatedTime() time.Time {
	return time.UnixMilli(d.CreatedAt)
}

// ListProjects returns all projects reachable with the client token. Failures
// are logged and degrade to an empty slice; callers cannot distinguish "no
// projects" from "call failed".
func (c *Client) ListProjects(ctx context.Context) []Project {
	projects, err := c.fetchProjects(ctx)
	if err != nil {
		log.Printf("vercel: project listing failed: %v", err)
		return nil
	}
	return projects
}

// ListDeployments returns the deployments of one project, newest first as
// returned by the API. Failures are logged and degrade to an empty slice.
func (c *Client) ListDeployments(ctx context.Context, projectID string) []Deployment {
	deployments, err := c.fetchDeployments(ctx, projectID)
	if err != nil {
		log.Printf("vercel: deployment listing for project %s failed: %v", projectID, err)
		return nil
	}
	return deployments
}

func (c *Client) fetchProjects(ctx context.Context) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.getJSON(ctx, "/v9/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

func (c *Client) fetchDeployments(ctx context.Context, projectID string) ([]Deployment, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("limit", "20")

	var out struct {
		Deployments []Deployment `json:"deployments"`
	}
	if err := c.getJSON(ctx, "/v6/deployments", q, &out); err != nil {
		return nil, err
	}
	return out.Deployments, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.Token == "" {
		return fmt.Errorf("vercel token is not configured")
	}

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
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vercel request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
