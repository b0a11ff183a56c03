package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameters is returned when the profile id or credential is blank.
	ErrMissingParameters = errors.New("profile id and credential are required")

	// ErrEmptyContent is returned when the fetcher succeeded with a blank body.
	ErrEmptyContent = errors.New("fetched profile content is empty")

	// ErrParsingFailed is returned when none of the statistics were found.
	ErrParsingFailed = errors.New("no statistics found in profile content")

	// ErrMissingAPIKey is returned when a history lookup has no credential.
	ErrMissingAPIKey = errors.New("credential is required to list history")

	// ErrMissingHistoryParameters is returned when a history save is incomplete.
	ErrMissingHistoryParameters = errors.New("history save parameters are incomplete")
)

// Code is a stable, caller-visible error code.
type Code string

const (
	CodeMissingParameters      Code = "MISSING_PARAMETERS"
	CodeEmptyResponse          Code = "JINA_EMPTY_RESPONSE"
	CodeParsingFailed          Code = "PARSING_FAILED"
	CodeUnauthorized           Code = "JINA_UNAUTHORIZED"
	CodeForbidden              Code = "JINA_FORBIDDEN"
	CodeRateLimited            Code = "JINA_RATE_LIMITED"
	CodeTimeout                Code = "JINA_TIMEOUT"
	CodeInvalidResponseContent Code = "JINA_INVALID_RESPONSE_CONTENT"
	CodeInternal               Code = "INTERNAL_SERVER_ERROR"
	CodeMissingAPIKey          Code = "MISSING_JINA_API_KEY"
	CodeMissingHistoryParams   Code = "MISSING_HISTORY_SAVE_PARAMETERS"
	CodeHistoryGetFailed       Code = "SUPABASE_GET_ERROR"
	CodeHistorySaveFailed      Code = "SUPABASE_SAVE_ERROR"
)

// ClassifiedError is the only error shape that crosses the API boundary.
type ClassifiedError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e ClassifiedError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// FailureKind tags a FetchFailure.
type FailureKind string

const (
	FailureUnauthorized   FailureKind = "unauthorized"
	FailureForbidden      FailureKind = "forbidden"
	FailureRateLimited    FailureKind = "rate_limited"
	FailureTimeout        FailureKind = "timeout"
	FailureInvalidContent FailureKind = "invalid_content"
	FailureEmptyContent   FailureKind = "empty_content"
	FailureUpstreamStatus FailureKind = "upstream_status"
	FailureTransport      FailureKind = "transport"
)

// FetchFailure describes why the content fetch failed.
// Status is zero when no HTTP response was received.
type FetchFailure struct {
	Status  int
	Kind    FailureKind
	Message string
	Err     error
}

// NewFetchFailure creates a FetchFailure.
func NewFetchFailure(status int, kind FailureKind, message string, err error) *FetchFailure {
	return &FetchFailure{Status: status, Kind: kind, Message: message, Err: err}
}

func (f *FetchFailure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("fetch failed (%s, status %d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("fetch failed (%s): %s", f.Kind, f.Message)
}

func (f *FetchFailure) Unwrap() error {
	return f.Err
}

// HistoryOp names the history store operation that failed.
type HistoryOp string

const (
	HistorySave HistoryOp = "save"
	HistoryGet  HistoryOp = "get"
)

// HistoryError wraps a history store failure.
type HistoryError struct {
	Op  HistoryOp
	Err error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Op, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}
