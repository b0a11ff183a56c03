package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tiktok-stats/internal/domain"
	"tiktok-stats/pkg/log"
)

// ContentFetcher retrieves the textual rendering of a profile page.
type ContentFetcher interface {
	Fetch(ctx context.Context, targetID, credential string) (string, error)
}

// StatsExtractor finds statistics in fetched text.
type StatsExtractor interface {
	Extract(text string) domain.ProfileStats
}

// ErrorClassifier turns any pipeline error into a caller-visible code.
type ErrorClassifier interface {
	Classify(ctx context.Context, err error) domain.ClassifiedError
}

// QueryRecorder observes finished queries.
type QueryRecorder interface {
	ObserveQuery(outcome domain.Outcome, code domain.Code, elapsed time.Duration)
}

// QueryProfileUseCase runs validate, fetch, extract and classify for one
// profile. It keeps no state between calls.
type QueryProfileUseCase struct {
	fetcher    ContentFetcher
	extractor  StatsExtractor
	classifier ErrorClassifier
	autoSave   *SaveHistoryUseCase
	recorder   QueryRecorder
}

// NewQueryProfileUseCase creates a new QueryProfileUseCase.
func NewQueryProfileUseCase(fetcher ContentFetcher, extractor StatsExtractor, classifier ErrorClassifier) *QueryProfileUseCase {
	return &QueryProfileUseCase{
		fetcher:    fetcher,
		extractor:  extractor,
		classifier: classifier,
	}
}

// WithAutoSave records every successful query through saver.
func (uc *QueryProfileUseCase) WithAutoSave(saver *SaveHistoryUseCase) *QueryProfileUseCase {
	uc.autoSave = saver
	return uc
}

// WithRecorder reports every finished query to r.
func (uc *QueryProfileUseCase) WithRecorder(r QueryRecorder) *QueryProfileUseCase {
	uc.recorder = r
	return uc
}

// Execute always returns a result; failures are described by its Error.
func (uc *QueryProfileUseCase) Execute(ctx context.Context, targetID, credential string) (result *domain.QueryResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.GlobalErrorCtx(ctx, "query pipeline panic recovered", "panic", fmt.Sprint(r))
			result = uc.fail(ctx, fmt.Errorf("query pipeline panic: %v", r))
		}
		uc.observe(result, time.Since(start))
	}()

	if strings.TrimSpace(targetID) == "" || strings.TrimSpace(credential) == "" {
		return uc.fail(ctx, domain.ErrMissingParameters)
	}

	ctx = log.WithFields(ctx, "target_id", targetID)
	log.GlobalDebugCtx(ctx, "fetching profile content")

	text, err := uc.fetcher.Fetch(ctx, targetID, credential)
	if err != nil {
		log.GlobalWarnCtx(ctx, "profile fetch failed", "error", err.Error())
		return uc.fail(ctx, err)
	}

	if strings.TrimSpace(text) == "" {
		log.GlobalWarnCtx(ctx, "profile content is empty")
		return uc.fail(ctx, domain.ErrEmptyContent)
	}

	stats := uc.extractor.Extract(text)
	if stats.AllUnknown() {
		log.GlobalWarnCtx(ctx, "no statistics found in profile content", "content_len", len(text))
		classified := uc.classifier.Classify(ctx, domain.ErrParsingFailed)
		return &domain.QueryResult{Outcome: domain.OutcomePartial, Data: &stats, Error: &classified}
	}

	log.GlobalInfoCtx(ctx, "profile statistics extracted",
		"following", stats.FollowingCount,
		"followers", stats.FollowersCount,
		"likes", stats.LikesCount,
	)

	uc.save(ctx, targetID, credential, stats)

	return &domain.QueryResult{Outcome: domain.OutcomeSuccess, Data: &stats}
}

func (uc *QueryProfileUseCase) fail(ctx context.Context, err error) *domain.QueryResult {
	classified := uc.classifier.Classify(ctx, err)
	return &domain.QueryResult{Outcome: domain.OutcomeFailed, Error: &classified}
}

// save is best effort: a failure is logged and never changes the result.
func (uc *QueryProfileUseCase) save(ctx context.Context, targetID, credential string, stats domain.ProfileStats) {
	if uc.autoSave == nil {
		return
	}

	_, err := uc.autoSave.Execute(ctx, SaveHistoryInput{
		Credential:     credential,
		TargetID:       targetID,
		FollowingCount: &stats.FollowingCount,
		FollowersCount: &stats.FollowersCount,
		LikesCount:     &stats.LikesCount,
	})
	if err != nil {
		log.GlobalWarnCtx(ctx, "auto-save of query history failed", "error", err.Error())
	}
}

func (uc *QueryProfileUseCase) observe(result *domain.QueryResult, elapsed time.Duration) {
	if uc.recorder == nil || result == nil {
		return
	}
	var code domain.Code
	if result.Error != nil {
		code = result.Error.Code
	}
	uc.recorder.ObserveQuery(result.Outcome, code, elapsed)
}
