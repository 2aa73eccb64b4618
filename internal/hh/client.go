// Package hh implements the gateway to the HeadHunter-style recruitment API:
// vacancy search, application submission, and resume listing, with bounded
// retry on rate limiting.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talentwire/autoapply/internal/domain/model"
)

// APIError is a non-2xx response from the external API other than a rate
// limit. StatusCode and the raw body are preserved for the audit trail.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("external api error: %d - %s", e.StatusCode, e.Body)
}

// SleepFunc suspends for d or until the context is done. Injectable so tests
// can simulate repeated throttling without wall-clock waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config holds the gateway settings.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RateLimitCooldown is how long to wait after an HTTP 429 before
	// retrying the identical request.
	RateLimitCooldown time.Duration
	// RateLimitRetries caps how many cooldown-and-retry rounds one call may
	// perform before the 429 is surfaced as an APIError.
	RateLimitRetries int

	// Optional injection points for tests.
	HTTPClient *http.Client
	Sleep      SleepFunc
	Logger     *slog.Logger
}

// Client is the external API gateway.
type Client struct {
	baseURL   string
	userAgent string
	cooldown  time.Duration
	retries   int
	hc        *http.Client
	sleep     SleepFunc
	logger    *slog.Logger
}

const (
	defaultTimeout   = 30 * time.Second
	defaultCooldown  = 60 * time.Second
	defaultRetries   = 5
	defaultUserAgent = "autoapply/1.0"
)

// NewClient creates a gateway client with the given configuration.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.hh.ru"
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	cooldown := cfg.RateLimitCooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	retries := cfg.RateLimitRetries
	if retries < 0 {
		retries = defaultRetries
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{
			Timeout: timeout,
			// A 303 from a submission is a result, not a redirect to follow;
			// its Location header identifies the external application page.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		cooldown:  cooldown,
		retries:   retries,
		hc:        hc,
		sleep:     sleep,
		logger:    logger.With("component", "hh_client"),
	}
}

// SearchVacancies issues an authenticated vacancy query and returns one page
// of results in the API's response order.
func (c *Client) SearchVacancies(ctx context.Context, params model.VacancySearchParams, token string) (*model.VacancyPage, error) {
	endpoint := c.baseURL + "/vacancies?" + params.Values().Encode()

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var page model.VacancyPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode vacancy page: %w", err)
	}
	return &page, nil
}

// GetVacancy fetches full details for one vacancy.
func (c *Client) GetVacancy(ctx context.Context, vacancyID, token string) (*model.Vacancy, error) {
	endpoint := c.baseURL + "/vacancies/" + url.PathEscape(vacancyID)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var vacancy model.Vacancy
	if err := json.NewDecoder(resp.Body).Decode(&vacancy); err != nil {
		return nil, fmt.Errorf("decode vacancy: %w", err)
	}
	return &vacancy, nil
}

// ApplyRequest carries one application submission.
type ApplyRequest struct {
	ResumeID  string
	VacancyID string
	Message   string
}

// Apply submits a form-encoded application. A 201 is a platform application
// with the external id taken from the Location header; a 303 means the
// applicant is redirected to an outside site, which still counts as sent.
func (c *Client) Apply(ctx context.Context, req ApplyRequest, token string) (*model.ApplyResult, error) {
	form := url.Values{}
	form.Set("resume_id", req.ResumeID)
	form.Set("vacancy_id", req.VacancyID)
	if req.Message != "" {
		form.Set("message", req.Message)
	}
	encoded := form.Encode()
	endpoint := c.baseURL + "/negotiations"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		httpReq, reqErr := c.newRequest(ctx, http.MethodPost, endpoint, strings.NewReader(encoded), token)
		if reqErr != nil {
			return nil, reqErr
		}
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return httpReq, nil
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	location := resp.Header.Get("Location")
	switch resp.StatusCode {
	case http.StatusCreated:
		return &model.ApplyResult{
			ID:       idFromLocation(location),
			Status:   model.ApplyResultSuccess,
			Location: location,
		}, nil
	case http.StatusSeeOther:
		return &model.ApplyResult{
			ID:       "external",
			Status:   model.ApplyResultExternal,
			Location: location,
		}, nil
	default:
		return nil, newAPIError(resp)
	}
}

// ListResumes returns the authenticated user's resumes. Used by the
// connectivity-test path, not by the polling loop.
func (c *Client) ListResumes(ctx context.Context, token string) (*model.ResumeList, error) {
	endpoint := c.baseURL + "/resumes/mine"

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	})
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var list model.ResumeList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode resume list: %w", err)
	}
	return &list, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("HH-User-Agent", c.userAgent)
	return req, nil
}

// doWithRetry executes the request, waiting out up to c.retries rate-limit
// responses. The request is rebuilt per attempt so form bodies can be re-read.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	attempts := c.retries + 1
	for attempt := 1; ; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("do request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		apiErr := newAPIError(resp)
		closeBody(resp)
		if attempt >= attempts {
			return nil, apiErr
		}

		c.logger.WarnContext(ctx, "rate limited, backing off",
			"cooldown", c.cooldown, "attempt", attempt, "max_attempts", attempts)
		if sleepErr := c.sleep(ctx, c.cooldown); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func idFromLocation(location string) string {
	if location == "" {
		return "unknown"
	}
	parts := strings.Split(strings.TrimRight(location, "/"), "/")
	return parts[len(parts)-1]
}
