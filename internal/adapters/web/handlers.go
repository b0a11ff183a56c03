package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"tiktok-stats/internal/classifier"
	"tiktok-stats/internal/domain"
	"tiktok-stats/internal/usecases"
	"tiktok-stats/pkg/log"
)

// DefaultQueryTimeout bounds one /api/handler request end to end.
const DefaultQueryTimeout = 45 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	query         *usecases.QueryProfileUseCase
	saveHistory   *usecases.SaveHistoryUseCase
	listHistory   *usecases.ListHistoryUseCase
	classifier    usecases.ErrorClassifier
	defaultLocale classifier.Locale
	queryTimeout  time.Duration
	pinger        Pinger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	query *usecases.QueryProfileUseCase,
	saveHistory *usecases.SaveHistoryUseCase,
	listHistory *usecases.ListHistoryUseCase,
	errorClassifier usecases.ErrorClassifier,
	defaultLocale classifier.Locale,
) *Handlers {
	return &Handlers{
		query:         query,
		saveHistory:   saveHistory,
		listHistory:   listHistory,
		classifier:    errorClassifier,
		defaultLocale: defaultLocale,
		queryTimeout:  DefaultQueryTimeout,
	}
}

// WithPinger makes /healthz report the state of p.
func (h *Handlers) WithPinger(p Pinger) *Handlers {
	h.pinger = p
	return h
}

// WithQueryTimeout overrides DefaultQueryTimeout. Non-positive values are ignored.
func (h *Handlers) WithQueryTimeout(d time.Duration) *Handlers {
	if d > 0 {
		h.queryTimeout = d
	}
	return h
}

// render is a helper to render templ components.
func render(c *fiber.Ctx, component templ.Component) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return adaptor.HTTPHandler(templ.Handler(component))(c)
}

// Home renders the query page in the request's locale.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return render(c, Home(classifier.LocaleFromContext(c.UserContext(), h.defaultLocale)))
}

// Health reports liveness, and the history store when it can be pinged.
func (h *Handlers) Health(c *fiber.Ctx) error {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			log.GlobalWarnCtx(ctx, "health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type queryRequest struct {
	TargetID   string `json:"tiktokUserId"`
	Credential string `json:"jinaApiKey"`
}

// Query fetches one profile and answers with its statistics.
func (h *Handlers) Query(c *fiber.Ctx) error {
	var req queryRequest
	if err := decodeBody(c, &req); err != nil {
		log.GlobalWarnCtx(c.UserContext(), "invalid query body", "error", err)
		return h.fail(c, fiber.StatusBadRequest, domain.ErrMissingParameters)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.queryTimeout)
	defer cancel()

	result := h.query.Execute(ctx, NormalizeTargetID(req.TargetID), req.Credential)

	resp := apiResponse{Success: result.Success(), Error: result.Error}
	if result.Data != nil {
		resp.Data = result.Data
	}
	return c.Status(queryStatus(result)).JSON(resp)
}

type saveHistoryRequest struct {
	Credential     string      `json:"jinaApiKey"`
	TargetID       string      `json:"tiktokUserId"`
	FollowingCount *flexString `json:"followingCount"`
	FollowersCount *flexString `json:"followersCount"`
	LikesCount     *flexString `json:"likesCount"`
}

// SaveHistory stores one query result for the caller's credential.
func (h *Handlers) SaveHistory(c *fiber.Ctx) error {
	var req saveHistoryRequest
	if err := decodeBody(c, &req); err != nil {
		log.GlobalWarnCtx(c.UserContext(), "invalid history save body", "error", err)
		return h.fail(c, fiber.StatusBadRequest, domain.ErrMissingHistoryParameters)
	}

	record, err := h.saveHistory.Execute(c.UserContext(), usecases.SaveHistoryInput{
		Credential:     req.Credential,
		TargetID:       NormalizeTargetID(req.TargetID),
		FollowingCount: req.FollowingCount.ptr(),
		FollowersCount: req.FollowersCount.ptr(),
		LikesCount:     req.LikesCount.ptr(),
	})
	if err != nil {
		return h.failHistory(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(apiResponse{Success: true, Data: record})
}

type listHistoryRequest struct {
	Credential string `json:"jinaApiKey"`
}

// ListHistory returns the caller's most recent queries, newest first.
func (h *Handlers) ListHistory(c *fiber.Ctx) error {
	var req listHistoryRequest
	if err := decodeBody(c, &req); err != nil {
		log.GlobalWarnCtx(c.UserContext(), "invalid history get body", "error", err)
		return h.fail(c, fiber.StatusBadRequest, domain.ErrMissingAPIKey)
	}

	records, err := h.listHistory.Execute(c.UserContext(), req.Credential)
	if err != nil {
		return h.failHistory(c, err)
	}

	return c.JSON(apiResponse{Success: true, Data: records})
}

func (h *Handlers) failHistory(c *fiber.Ctx, err error) error {
	classified := h.classifier.Classify(c.UserContext(), err)
	if historyStatus(classified) >= fiber.StatusInternalServerError {
		log.GlobalErrorCtx(c.UserContext(), "history request failed", "code", classified.Code, "error", err)
	}
	return c.Status(historyStatus(classified)).JSON(apiResponse{Error: &classified})
}

func (h *Handlers) fail(c *fiber.Ctx, status int, err error) error {
	classified := h.classifier.Classify(c.UserContext(), err)
	return c.Status(status).JSON(apiResponse{Error: &classified})
}

// decodeBody parses a JSON body regardless of the Content-Type header.
func decodeBody(c *fiber.Ctx, v any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	return json.Unmarshal(body, v)
}

// flexString accepts a JSON string or number and keeps its text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}
