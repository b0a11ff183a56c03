package usecases

import (
	"context"
	"strings"

	"tiktok-stats/internal/domain"
	"tiktok-stats/pkg/log"
)

// DefaultHistoryLimit is the number of records returned by a history lookup.
const DefaultHistoryLimit = 20

// HistoryStore persists query history records.
type HistoryStore interface {
	Save(ctx context.Context, record domain.HistoryRecord) (*domain.HistoryRecord, error)
	List(ctx context.Context, keyIdentifier string, limit int) ([]domain.HistoryRecord, error)
}

// SaveHistoryInput is a history save request. A nil count means the field
// was not supplied; an empty string is a supplied value.
type SaveHistoryInput struct {
	Credential     string
	TargetID       string
	FollowingCount *string
	FollowersCount *string
	LikesCount     *string
}

func (in SaveHistoryInput) complete() bool {
	return strings.TrimSpace(in.Credential) != "" &&
		strings.TrimSpace(in.TargetID) != "" &&
		in.FollowingCount != nil &&
		in.FollowersCount != nil &&
		in.LikesCount != nil
}

// SaveHistoryUseCase stores one query result under the credential's identifier.
type SaveHistoryUseCase struct {
	store HistoryStore
}

// NewSaveHistoryUseCase creates a new SaveHistoryUseCase.
func NewSaveHistoryUseCase(store HistoryStore) *SaveHistoryUseCase {
	return &SaveHistoryUseCase{store: store}
}

// Execute validates the input and saves it. The credential itself is never
// stored, only domain.KeyIdentifier of it.
func (uc *SaveHistoryUseCase) Execute(ctx context.Context, in SaveHistoryInput) (*domain.HistoryRecord, error) {
	if !in.complete() {
		return nil, domain.ErrMissingHistoryParameters
	}

	keyID := domain.KeyIdentifier(in.Credential)
	record := domain.NewHistoryRecord(keyID, in.TargetID, domain.ProfileStats{
		FollowingCount: *in.FollowingCount,
		FollowersCount: *in.FollowersCount,
		LikesCount:     *in.LikesCount,
	})

	saved, err := uc.store.Save(ctx, record)
	if err != nil {
		return nil, &domain.HistoryError{Op: domain.HistorySave, Err: err}
	}

	log.GlobalInfoCtx(ctx, "history record saved", "key_id", keyID, "target_id", in.TargetID, "record_id", saved.ID)

	return saved, nil
}

// ListHistoryUseCase returns the most recent records for a credential.
type ListHistoryUseCase struct {
	store HistoryStore
	limit int
}

// NewListHistoryUseCase creates a new ListHistoryUseCase. A non-positive
// limit falls back to DefaultHistoryLimit.
func NewListHistoryUseCase(store HistoryStore, limit int) *ListHistoryUseCase {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &ListHistoryUseCase{store: store, limit: limit}
}

// Execute lists records newest first. It never returns a nil slice on success.
func (uc *ListHistoryUseCase) Execute(ctx context.Context, credential string) ([]domain.HistoryRecord, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	keyID := domain.KeyIdentifier(credential)
	records, err := uc.store.List(ctx, keyID, uc.limit)
	if err != nil {
		return nil, &domain.HistoryError{Op: domain.HistoryGet, Err: err}
	}

	log.GlobalDebugCtx(ctx, "history listed", "key_id", keyID, "count", len(records))

	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}
