// Package classifier turns pipeline errors into caller-visible codes.
package classifier

import (
	"context"
	"errors"
	"net"
	"strings"

	"tiktok-stats/internal/domain"
)

const maxPassthroughLen = 200

// Classifier assigns exactly one code to every error. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	defaultLocale Locale
}

// New creates a classifier whose messages default to defaultLocale.
func New(defaultLocale Locale) *Classifier {
	return &Classifier{defaultLocale: defaultLocale}
}

var sentinelCodes = []struct {
	err  error
	code domain.Code
}{
	{domain.ErrMissingParameters, domain.CodeMissingParameters},
	{domain.ErrMissingAPIKey, domain.CodeMissingAPIKey},
	{domain.ErrMissingHistoryParameters, domain.CodeMissingHistoryParams},
	{domain.ErrEmptyContent, domain.CodeEmptyResponse},
	{domain.ErrParsingFailed, domain.CodeParsingFailed},
}

var statusCodes = map[int]domain.Code{
	401: domain.CodeUnauthorized,
	403: domain.CodeForbidden,
	429: domain.CodeRateLimited,
}

var kindCodes = map[domain.FailureKind]domain.Code{
	domain.FailureUnauthorized:   domain.CodeUnauthorized,
	domain.FailureForbidden:      domain.CodeForbidden,
	domain.FailureRateLimited:    domain.CodeRateLimited,
	domain.FailureTimeout:        domain.CodeTimeout,
	domain.FailureInvalidContent: domain.CodeInvalidResponseContent,
	domain.FailureEmptyContent:   domain.CodeEmptyResponse,
}

// Order matters: the first rule whose needle appears in the message wins.
var substringRules = []struct {
	needles []string
	code    domain.Code
}{
	{[]string{"status 401", "错误: 401"}, domain.CodeUnauthorized},
	{[]string{"status 403", "错误: 403"}, domain.CodeForbidden},
	{[]string{"status 429", "错误: 429"}, domain.CodeRateLimited},
	{[]string{"timeout", "timed out", "超时"}, domain.CodeTimeout},
	{[]string{"empty or invalid", "为空或无效"}, domain.CodeInvalidResponseContent},
}

// Classify maps err to a code and a localized message. The locale comes from
// ctx (see WithLocale).
func (c *Classifier) Classify(ctx context.Context, err error) domain.ClassifiedError {
	locale := LocaleFromContext(ctx, c.defaultLocale)
	code, passthrough := c.code(err)

	msg := Message(locale, code)
	if passthrough != "" {
		msg = passthrough
	}

	return domain.ClassifiedError{Code: code, Message: msg}
}

// code returns the code for err and, when the raw message may be shown to
// the caller, that message.
func (c *Classifier) code(err error) (domain.Code, string) {
	if err == nil {
		return domain.CodeInternal, ""
	}

	var classified domain.ClassifiedError
	if errors.As(err, &classified) {
		return classified.Code, classified.Message
	}

	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code, ""
		}
	}

	var historyErr *domain.HistoryError
	if errors.As(err, &historyErr) {
		code := domain.CodeHistoryGetFailed
		if historyErr.Op == domain.HistorySave {
			code = domain.CodeHistorySaveFailed
		}
		return code, safeMessage(historyErr.Err)
	}

	var failure *domain.FetchFailure
	if errors.As(err, &failure) {
		if code, ok := statusCodes[failure.Status]; ok {
			return code, ""
		}
		if code, ok := kindCodes[failure.Kind]; ok {
			return code, ""
		}
	}

	if isTimeout(err) {
		return domain.CodeTimeout, ""
	}

	lower := strings.ToLower(err.Error())
	for _, rule := range substringRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.code, ""
			}
		}
	}

	return domain.CodeInternal, safeMessage(err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// safeMessage returns err's message when it is short, single-line and free
// of stack or source markers. Otherwise it returns "".
func safeMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" || len(msg) > maxPassthroughLen {
		return ""
	}
	if strings.ContainsAny(msg, "\r\n") {
		return ""
	}
	for _, marker := range []string{".go:", "goroutine ", "panic:", "runtime."} {
		if strings.Contains(msg, marker) {
			return ""
		}
	}
	return msg
}
