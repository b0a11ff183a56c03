// Package extractor pulls follower statistics out of free-form profile text.
package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"tiktok-stats/internal/domain"
	"tiktok-stats/pkg/log"
)

// Field names a statistic the extractor fills in.
type Field string

const (
	FieldFollowing Field = "following"
	FieldFollowers Field = "followers"
	FieldLikes     Field = "likes"
)

// A number is a digit followed by digits, commas or dots (group 1) and an
// optional magnitude letter with any spacing before it (group 2). When the
// label follows, the label ends the token, so the letter may touch it. When
// the label comes first, the letter only counts if no other letter follows.
const (
	numberBeforeLabel = `(\d[\d.,]*)(\s*[KMBT])?`
	numberAfterLabel  = `(\d[\d.,]*)(?:(\s*[KMBT])(?:[^A-Za-z]|$))?`
)

var ErrInvalidRules = errors.New("invalid extraction rules")

// Rule associates a field with the labels that announce it.
type Rule struct {
	Field  Field    `yaml:"field"`
	Labels []string `yaml:"labels"`
}

// DefaultRules returns the built-in English and Chinese labels.
func DefaultRules() []Rule {
	return []Rule{
		{Field: FieldFollowing, Labels: []string{"Following", "关注"}},
		{Field: FieldFollowers, Labels: []string{"Followers", "粉丝"}},
		{Field: FieldLikes, Labels: []string{"Likes", "获赞", "喜欢"}},
	}
}

type compiledRule struct {
	field       Field
	numberFirst *regexp.Regexp
	labelFirst  *regexp.Regexp
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRules)
	}

	seen := make(map[Field]bool, len(rules))
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		switch r.Field {
		case FieldFollowing, FieldFollowers, FieldLikes:
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidRules, r.Field)
		}
		if seen[r.Field] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidRules, r.Field)
		}
		seen[r.Field] = true

		quoted := make([]string, 0, len(r.Labels))
		for _, label := range r.Labels {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(label))
		}
		if len(quoted) == 0 {
			return nil, fmt.Errorf("%w: field %q has no labels", ErrInvalidRules, r.Field)
		}
		labels := "(?:" + strings.Join(quoted, "|") + ")"

		numberFirst, err := regexp.Compile(`(?i)` + numberBeforeLabel + `\s*[*\s]*` + labels)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}
		labelFirst, err := regexp.Compile(`(?i)` + labels + `[*\s]*` + numberAfterLabel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
		}

		compiled = append(compiled, compiledRule{
			field:       r.Field,
			numberFirst: numberFirst,
			labelFirst:  labelFirst,
		})
	}

	return compiled, nil
}

// Extractor is safe for concurrent use. The active rule set can be swapped
// at any time without blocking Extract.
type Extractor struct {
	rules atomic.Pointer[[]compiledRule]
}

// New returns an extractor using DefaultRules.
func New() *Extractor {
	e, err := NewWithRules(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithRules returns an extractor using the given rules.
func NewWithRules(rules []Rule) (*Extractor, error) {
	e := &Extractor{}
	if err := e.SetRules(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// SetRules validates and activates a new rule set. On error the current
// rules stay in place.
func (e *Extractor) SetRules(rules []Rule) error {
	compiled, err := compileRules(rules)
	if err != nil {
		return err
	}
	e.rules.Store(&compiled)
	return nil
}

// Extract returns the statistics found in text. Fields that cannot be found
// hold domain.Sentinel. It never panics.
func (e *Extractor) Extract(text string) (stats domain.ProfileStats) {
	stats = domain.UnknownStats()

	defer func() {
		if r := recover(); r != nil {
			log.GlobalError("extractor panic recovered", "panic", fmt.Sprint(r))
			stats = domain.UnknownStats()
		}
	}()

	if strings.TrimSpace(text) == "" {
		return stats
	}

	rules := e.rules.Load()
	if rules == nil {
		return stats
	}

	for _, r := range *rules {
		value := match(r, text)
		switch r.field {
		case FieldFollowing:
			stats.FollowingCount = value
		case FieldFollowers:
			stats.FollowersCount = value
		case FieldLikes:
			stats.LikesCount = value
		}
	}

	if stats.AllUnknown() {
		log.GlobalDebug("no statistics found in text", "text_len", len(text))
	}

	return stats
}

func match(r compiledRule, text string) string {
	m := r.numberFirst.FindStringSubmatch(text)
	if m == nil {
		m = r.labelFirst.FindStringSubmatch(text)
	}
	if m == nil || m[1] == "" {
		return domain.Sentinel
	}
	return strings.ReplaceAll(strings.TrimSpace(m[1]+m[2]), ",", "")
}
