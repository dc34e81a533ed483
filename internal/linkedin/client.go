package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/logger"
)

// ErrMalformedResponse marks the transient failure mode of the external API:
// a non-JSON or non-OK response, usually a sign of throttling. Calls hitting
// it are retried up to the policy ceiling before the error propagates.
var ErrMalformedResponse = errors.New("malformed response from external API")

const (
	searchPath    = "/voyager/api/voyagerJobsDashJobCards"
	jobPath       = "/voyager/api/jobs/jobPostings/%s"
	jobSkillsPath = "/voyager/api/voyagerAssessmentsDashJobSkillMatchInsight/urn:li:fsd_jobSkillMatchInsight:%s"
	authPath      = "/uas/authenticate"

	sessionCookie = "li_at"
	csrfCookie    = "JSESSIONID"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// SessionStore persists refreshed session cookies back to a credential.
type SessionStore interface {
	SaveCookies(ctx context.Context, cred *domain.Credential) error
}

// Config holds client adapter configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Policy  RetryPolicy
}

// Client is the rate-limited adapter around the external job API. One client
// is bound to one credential; its session cookies are restored at
// construction and persisted back through the SessionStore.
type Client struct {
	http    *resty.Client
	cred    *domain.Credential
	store   SessionStore
	policy  RetryPolicy
	cookies map[string]string
	log     *logger.Logger
}

// New builds a client for the given credential, reusing its persisted session
// where possible and authenticating otherwise. The refreshed session state is
// written back through store before New returns.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cred: scraping credential, proxy preloaded if any.
//   - store: sink for refreshed session cookies.
//   - cfg: adapter configuration.
// Returns:
//   - *Client: authenticated client.
//   - error: non-nil if authentication fails.
func New(ctx context.Context, cred *domain.Credential, store SessionStore, cfg *Config) (*Client, error) {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	if cred.Proxy != nil {
		httpClient.SetProxy(cred.Proxy.URL())
	}

	c := &Client{
		http:    httpClient,
		cred:    cred,
		store:   store,
		policy:  cfg.Policy,
		cookies: cred.CookieMap(),
		log:     logger.GetDefault().WithField(logger.FieldCredentialID, cred.ID),
	}
	c.applyCookies()

	if c.cookies[sessionCookie] == "" {
		if err := c.authenticate(ctx); err != nil {
			return nil, err
		}
	}

	// Persist session state so the next construction reuses this auth.
	cred.SetCookieMap(c.cookies)
	if err := store.SaveCookies(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to persist session cookies: %w", err)
	}

	return c, nil
}

// SearchJobs pages through the job-search endpoint for one location and a
// set of title identifiers.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - geoID: external location identifier.
//   - titleIDs: expanded title identifiers.
//   - offset: result offset of the requested page.
//   - limit: page size.
//   - listedWithin: recency window for results.
// Returns:
//   - []SearchResult: page of results, possibly short or empty.
//   - error: non-nil if the retry budget is exhausted.
func (c *Client) SearchJobs(ctx context.Context, geoID string, titleIDs []string, offset, limit int, listedWithin time.Duration) ([]SearchResult, error) {
	query := fmt.Sprintf(
		"(origin:JOB_SEARCH_PAGE_JOB_FILTER,locationUnion:(geoId:%s),selectedFilters:(title:List(%s),timePostedRange:List(r%d)),spellCorrectionEnabled:true)",
		geoID,
		strings.Join(titleIDs, ","),
		int(listedWithin.Seconds()),
	)

	var res searchResponse
	err := c.getJSON(ctx, searchPath, map[string]string{
		"q":     "jobSearch",
		"query": query,
		"start": strconv.Itoa(offset),
		"count": strconv.Itoa(limit),
	}, &res)
	if err != nil {
		return nil, err
	}
	return res.Elements, nil
}

// GetJob fetches the full detail of one posting.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: external posting identifier.
// Returns:
//   - *JobDetail: decoded detail payload.
//   - error: non-nil if the retry budget is exhausted.
func (c *Client) GetJob(ctx context.Context, jobID string) (*JobDetail, error) {
	var detail JobDetail
	err := c.getJSON(ctx, fmt.Sprintf(jobPath, jobID), map[string]string{
		"decorationId": "com.linkedin.voyager.deco.jobs.web.shared.WebFullJobPosting-65",
	}, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetJobSkills fetches the skill-match list of one posting.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: external posting identifier.
// Returns:
//   - *SkillMatches: decoded skill payload.
//   - error: non-nil if the retry budget is exhausted.
func (c *Client) GetJobSkills(ctx context.Context, jobID string) (*SkillMatches, error) {
	var skills SkillMatches
	err := c.getJSON(ctx, fmt.Sprintf(jobSkillsPath, jobID), nil, &skills)
	if err != nil {
		return nil, err
	}
	return &skills, nil
}

// FetchImage downloads an image asset (company logo). No retry: logos are
// best-effort and the caller tolerates failure.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: absolute image URL.
// Returns:
//   - []byte: raw image bytes.
//   - error: non-nil on transport failure or non-OK status.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// getJSON performs one GET with the bounded retry loop of §retry policy: a
// malformed response sleeps an evasion interval and retries; any other error
// propagates immediately. The evasion delay also runs after success so every
// outbound call is paced.
func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt < c.policy.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		req := c.http.R().
			SetContext(ctx).
			SetHeader("csrf-token", c.csrfToken())
		if query != nil {
			req.SetQueryParams(query)
		}

		resp, err := req.Get(path)
		if err != nil {
			return fmt.Errorf("request %s failed: %w", path, err)
		}
		c.mergeCookies(resp.Cookies())

		if resp.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("%w: status %d", ErrMalformedResponse, resp.StatusCode())
			c.policy.Evade()
			continue
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			c.policy.Evade()
			continue
		}

		c.policy.Evade()
		return nil
	}

	return fmt.Errorf("retry budget exhausted for %s: %w", path, lastErr)
}

// authenticate performs the two-step session login: seed the CSRF cookie,
// then post the credentials.
func (c *Client) authenticate(ctx context.Context) error {
	seed, err := c.http.R().SetContext(ctx).Get(authPath)
	if err != nil {
		return fmt.Errorf("failed to seed session: %w", err)
	}
	c.mergeCookies(seed.Cookies())

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"session_key":      c.cred.Username,
			"session_password": c.cred.Password,
			"JSESSIONID":       c.csrfToken(),
		}).
		Post(authPath)
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("failed to authenticate: status %d", resp.StatusCode())
	}
	c.mergeCookies(resp.Cookies())

	if c.cookies[sessionCookie] == "" {
		return fmt.Errorf("failed to authenticate: no session cookie issued")
	}

	c.log.Info("Authenticated new session")
	return nil
}

// csrfToken derives the CSRF header value from the session cookie.
func (c *Client) csrfToken() string {
	return strings.Trim(c.cookies[csrfCookie], `"`)
}

// mergeCookies folds response cookies into the tracked session state.
func (c *Client) mergeCookies(cookies []*http.Cookie) {
	changed := false
	for _, cookie := range cookies {
		if cookie.Value == "" {
			continue
		}
		if c.cookies[cookie.Name] != cookie.Value {
			c.cookies[cookie.Name] = cookie.Value
			changed = true
		}
	}
	if changed {
		c.applyCookies()
	}
}

// applyCookies pushes the tracked cookie map onto the underlying HTTP client.
func (c *Client) applyCookies() {
	cookies := make([]*http.Cookie, 0, len(c.cookies))
	for name, value := range c.cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	c.http.SetCookies(cookies)
}
