// Package domain contains the core business entities and rules.
package domain

import (
	"time"
	"unicode/utf8"
)

// Sentinel marks a statistic that could not be found in the profile text.
const Sentinel = "-"

// ProfileStats holds the three counters shown on a profile page.
// Values are the raw matched tokens (e.g. "3400", "1.2M"), never numbers.
type ProfileStats struct {
	FollowingCount string `json:"followingCount"`
	FollowersCount string `json:"followersCount"`
	LikesCount     string `json:"likesCount"`
}

// UnknownStats returns stats with every field set to Sentinel.
func UnknownStats() ProfileStats {
	return ProfileStats{
		FollowingCount: Sentinel,
		FollowersCount: Sentinel,
		LikesCount:     Sentinel,
	}
}

// AllUnknown reports whether no field was found.
func (s ProfileStats) AllUnknown() bool {
	return s.FollowingCount == Sentinel &&
		s.FollowersCount == Sentinel &&
		s.LikesCount == Sentinel
}

// Outcome is the terminal state of a profile query.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// QueryResult is what the orchestrator hands back to the boundary layer.
// Partial results carry both Data and Error.
type QueryResult struct {
	Outcome Outcome
	Data    *ProfileStats
	Error   *ClassifiedError
}

// Success reports whether the caller should see success:true.
func (r *QueryResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// HistoryRecord is one persisted query.
type HistoryRecord struct {
	ID             string    `json:"id" db:"id"`
	KeyIdentifier  string    `json:"jina_api_key_identifier" db:"jina_api_key_identifier"`
	TargetID       string    `json:"tiktok_user_id" db:"tiktok_user_id"`
	FollowingCount string    `json:"following_count" db:"following_count"`
	FollowersCount string    `json:"followers_count" db:"followers_count"`
	LikesCount     string    `json:"likes_count" db:"likes_count"`
	QueriedAt      time.Time `json:"queried_at" db:"queried_at"`
}

// NewHistoryRecord builds a record for the given key identifier and stats.
func NewHistoryRecord(keyIdentifier, targetID string, stats ProfileStats) HistoryRecord {
	return HistoryRecord{
		KeyIdentifier:  keyIdentifier,
		TargetID:       targetID,
		FollowingCount: stats.FollowingCount,
		FollowersCount: stats.FollowersCount,
		LikesCount:     stats.LikesCount,
		QueriedAt:      time.Now().UTC(),
	}
}

// invalidKeyIdentifier groups history for credentials too short to abbreviate.
const invalidKeyIdentifier = "invalid_or_short_api_key"

// KeyIdentifier derives the short display form of a credential used to group
// history records: the first and last four characters.
func KeyIdentifier(credential string) string {
	if utf8.RuneCountInString(credential) <= 8 {
		return invalidKeyIdentifier
	}
	runes := []rune(credential)
	return string(runes[:4]) + "..." + string(runes[len(runes)-4:])
}
