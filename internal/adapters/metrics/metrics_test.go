package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tiktok-stats/internal/domain"
)

func TestObserveQuery_CountsByOutcomeAndCode(t *testing.T) {
	// Arrange
	m := New()

	// Act
	m.ObserveQuery(domain.OutcomeSuccess, "", 120*time.Millisecond)
	m.ObserveQuery(domain.OutcomeFailed, domain.CodeUnauthorized, time.Second)
	m.ObserveQuery(domain.OutcomeFailed, domain.CodeUnauthorized, 2*time.Second)

	// Assert
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("success", "")); got != 1 {
		t.Errorf("success count: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.QueriesTotal.WithLabelValues("failed", "JINA_UNAUTHORIZED")); got != 2 {
		t.Errorf("failed count: got %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.QueryDurationSeconds); got != 2 {
		t.Errorf("histogram series: got %d, want 2", got)
	}
}

func TestHandler_ServesQueryMetrics(t *testing.T) {
	// Arrange
	m := New()
	m.ObserveQuery(domain.OutcomePartial, domain.CodeParsingFailed, time.Second)
	rec := httptest.NewRecorder()

	// Act
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	// Assert
	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	if !strings.Contains(out, `tiktok_stats_queries_total{code="PARSING_FAILED",outcome="partial"} 1`) {
		t.Errorf("counter missing from output:\n%s", out)
	}
	if !strings.Contains(out, "tiktok_stats_query_duration_seconds_bucket") {
		t.Errorf("histogram missing from output")
	}
	if !strings.Contains(out, "go_goroutines") {
		t.Errorf("go collector missing from output")
	}
}
