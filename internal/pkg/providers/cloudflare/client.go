package cloudflare

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

const defaultAPIBaseURL = "https://api.cloudflare.com/client/v4"

// Client issues authenticated read-only calls against the Cloudflare v4 API
// for one account. The account id is validated before any request is made;
// a malformed id short-circuits every listing to an empty result.
type Client struct {
	Token      string
	AccountID  string
	APIBaseURL string
	HTTPClient *http.Client
}

func NewClient(token, accountID string) *Client {
	return &Client{
		Token:      strings.TrimSpace(token),
		AccountID:  strings.TrimSpace(accountID),
		APIBaseURL: defaultAPIBaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PagesProject is one Cloudflare Pages project.
type PagesProject struct {
	Name      string       `json:"name"`
	Subdomain string       `json:"subdomain"`
	Domains   []string     `json:"domains"`
	Source    *PagesSource `json:"source"`
}

// PagesSource is the git integration metadata of a Pages project.
type PagesSource struct {
	Type   string `json:"type"`
	Config struct {
		Owner    string `json:"owner"`
		RepoName string `json:"repo_name"`
	} `json:"config"`
}

// LinkedRepoName returns the repository name the project builds from, or "".
func (p *PagesProject) LinkedRepoName() string {
	if p.Source == nil {
		return ""
	}
	return strings.TrimSpace(p.Source.Config.RepoName)
}

// LiveURL returns the public URL of the project.
func (p *PagesProject) LiveURL() string {
	if len(p.Domains) > 0 && p.Domains[0] != "" {
		return "https://" + p.Domains[0]
	}
	if p.Subdomain != "" {
		return "https://" + p.Subdomain
	}
	return ""
}

// PagesDeployment is one deployment of a Pages project.
type PagesDeployment struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Environment string    `json:"environment"`
	CreatedOn   time.Time `json:"created_on"`
	LatestStage struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"latest_stage"`
	DeploymentTrigger struct {
		Metadata struct {
			Branch     string `json:"branch"`
			CommitHash string `json:"commit_hash"`
		} `json:"metadata"`
	} `json:"deployment_trigger"`
}

// WorkerScript is one deployed Workers script.
type WorkerScript struct {
	ID         string    `json:"id"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}

// ListPagesProjects returns the account's Pages projects. Failures are logged
// and degrade to an empty slice.
func (c *Client) ListPagesProjects(ctx context.Context) []PagesProject {
	if !models.ValidCloudflareAccountID(c.AccountID) {
		return nil
	}
	var projects []PagesProject
	if err := c.getResult(ctx, "/pages/projects", &projects); err != nil {
		log.Printf("cloudflare: pages project listing failed: %v", err)
		return nil
	}
	return projects
}

// ListPagesDeployments returns the deployments of one Pages project, newest
// first as returned by the API. Failures are logged and degrade to an empty
// slice.
func (c *Client) ListPagesDeployments(ctx context.Context, projectName string) []PagesDeployment {
	if !models.ValidCloudflareAccountID(c.AccountID) {
		return nil
	}
	projectName = strings.TrimSpace(projectName)
	if projectName == "" {
		return nil
	}
	var deployments []PagesDeployment
	path := fmt.Sprintf("/pages/projects/%s/deployments", url.PathEscape(projectName))
	if err := c.getResult(ctx, path, &deployments); err != nil {
		log.Printf("cloudflare: deployment listing for project %s failed: %v", projectName, err)
		return nil
	}
	return deployments
}

// ListWorkerScripts returns the account's Workers scripts. Failures are logged
// and degrade to an empty slice.
func (c *Client) ListWorkerScripts(ctx context.Context) []WorkerScript {
	if !models.ValidCloudflareAccountID(c.AccountID) {
		return nil
	}
	var scripts []WorkerScript
	if err := c.getResult(ctx, "/workers/scripts", &scripts); err != nil {
		log.Printf("cloudflare: worker script listing failed: %v", err)
		return nil
	}
	return scripts
}

func (c *Client) getResult(ctx context.Context, path string, out interface{}) error {
	if c.Token == "" {
		return fmt.Errorf("cloudflare token is not configured")
	}

	u := fmt.Sprintf("%s/accounts/%s%s", strings.TrimRight(c.APIBaseURL, "/"), c.AccountID, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
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
		return fmt.Errorf("cloudflare request %s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}

	var envelope struct {
		Success bool            `json:"success"`
		Result  json.RawMessage `json:"result"`
		Errors  []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if !envelope.Success {
		if len(envelope.Errors) > 0 {
			return fmt.Errorf("cloudflare request %s failed: code=%d message=%s",
				path, envelope.Errors[0].Code, envelope.Errors[0].Message)
		}
		return fmt.Errorf("cloudflare request %s failed", path)
	}

	return json.Unmarshal(envelope.Result, out)
}
