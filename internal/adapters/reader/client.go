// Package reader fetches profile pages through a hosted reader service that
// renders them as markdown.
package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tiktok-stats/internal/domain"
	"tiktok-stats/pkg/log"
)

const (
	DefaultBaseURL        = "https://r.jina.ai/"
	DefaultProfileBaseURL = "https://www.tiktok.com/@"
	DefaultTimeout        = 30 * time.Second
)

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	BaseURL        string
	ProfileBaseURL string
	Timeout        time.Duration
}

// envelope is the JSON body returned when the reader is asked for JSON.
type envelope struct {
	Code   int `json:"code"`
	Status int `json:"status"`
	Data   *struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"data"`
}

// Client fetches profiles through the reader service. It never retries.
type Client struct {
	client         *resty.Client
	baseURL        string
	profileBaseURL string
}

// New creates a new reader client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ProfileBaseURL == "" {
		cfg.ProfileBaseURL = DefaultProfileBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("X-Return-Format", "markdown")

	return &Client{
		client:         client,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/") + "/",
		profileBaseURL: cfg.ProfileBaseURL,
	}
}

// ProfileURL returns the reader URL for a profile id.
func (c *Client) ProfileURL(targetID string) string {
	return c.baseURL + c.profileBaseURL + url.PathEscape(targetID)
}

// Fetch returns the markdown rendering of the profile. Failures are
// *domain.FetchFailure.
func (c *Client) Fetch(ctx context.Context, targetID, credential string) (string, error) {
	start := time.Now()
	target := c.ProfileURL(targetID)

	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(credential).
		Get(target)
	if err != nil {
		if isTimeout(err) {
			return "", domain.NewFetchFailure(0, domain.FailureTimeout, "reader request timed out", err)
		}
		return "", domain.NewFetchFailure(0, domain.FailureTransport, "reader request failed", err)
	}

	log.GlobalDebugCtx(ctx, "reader responded",
		"status", res.StatusCode(),
		"bytes", len(res.Body()),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if failure := statusFailure(res.StatusCode(), res.Body()); failure != nil {
		return "", failure
	}

	var env envelope
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		return "", domain.NewFetchFailure(res.StatusCode(), domain.FailureInvalidContent, "reader response is not a JSON envelope", err)
	}
	if env.Code >= 400 {
		if failure := statusFailure(env.Code, res.Body()); failure != nil {
			return "", failure
		}
	}
	if env.Data == nil || strings.TrimSpace(env.Data.Content) == "" {
		return "", domain.NewFetchFailure(res.StatusCode(), domain.FailureInvalidContent, "markdown content is empty or invalid", nil)
	}

	return env.Data.Content, nil
}

// statusFailure maps a non-2xx status to a failure, or nil for 2xx. The
// upstream message in body wins over the fixed description.
func statusFailure(status int, body []byte) *domain.FetchFailure {
	var (
		kind    domain.FailureKind
		message string
	)
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		kind, message = domain.FailureUnauthorized, "reader rejected the credential"
	case status == http.StatusForbidden:
		kind, message = domain.FailureForbidden, "reader refused access"
	case status == http.StatusTooManyRequests:
		kind, message = domain.FailureRateLimited, "reader rate limit reached"
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind, message = domain.FailureTimeout, "reader timed out upstream"
	default:
		kind, message = domain.FailureUpstreamStatus, fmt.Sprintf("reader returned status %d", status)
	}

	if upstream := upstreamMessage(body); upstream != "" {
		message = upstream
	}
	return domain.NewFetchFailure(status, kind, message, nil)
}

// errorBody is the JSON body the reader sends with a failed request.
type errorBody struct {
	Message         string `json:"message"`
	ReadableMessage string `json:"readableMessage"`
}

// upstreamMessage returns readableMessage, then message, from a JSON error
// body. Anything else yields "".
func upstreamMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(eb.ReadableMessage); msg != "" {
		return msg
	}
	return strings.TrimSpace(eb.Message)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
