package log

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureTransporter struct {
	mu      sync.Mutex
	entries []Entry
}

func (c *captureTransporter) Name() string { return "capture" }

func (c *captureTransporter) Write(entry Entry) error {
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
	return nil
}

func (c *captureTransporter) Close() error { return nil }

func (c *captureTransporter) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry{}, c.entries...)
}

func TestLogger_Info_DeliversEntryOnClose(t *testing.T) {
	// Arrange
	capture := &captureTransporter{}
	logger := New(Info, capture)

	// Act
	logger.Info("query completed", "outcome", "success")
	logger.Close()

	// Assert
	entries := capture.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Message != "query completed" {
		t.Errorf("Message = %q", entries[0].Message)
	}
	if entries[0].Fields["outcome"] != "success" {
		t.Errorf("Fields[outcome] = %v, want success", entries[0].Fields["outcome"])
	}
	if !strings.HasPrefix(entries[0].Caller, "logger_test.go:") {
		t.Errorf("Caller = %q, want logger_test.go:<line>", entries[0].Caller)
	}
}

func TestLogger_Debug_BelowMinLevel_NotLogged(t *testing.T) {
	capture := &captureTransporter{}
	logger := New(Info, capture)

	logger.Debug("hidden")
	logger.Close()

	if len(capture.Entries()) != 0 {
		t.Error("debug should not be logged when min level is Info")
	}
}

func TestLogger_SetLevel_EnablesDebug(t *testing.T) {
	capture := &captureTransporter{}
	logger := New(Info, capture)

	logger.SetLevel(Debug)
	logger.Debug("visible")
	logger.Close()

	if len(capture.Entries()) != 1 {
		t.Error("debug should be logged after SetLevel(Debug)")
	}
}

func TestLogger_InfoCtx_CarriesRequestIDAndFields(t *testing.T) {
	// Arrange
	capture := &captureTransporter{}
	logger := New(Info, capture)
	ctx := WithRequestID(context.Background(), "req-abc")
	ctx = WithFields(ctx, "target_id", "someone")

	// Act
	logger.InfoCtx(ctx, "fetching")
	logger.Close()

	// Assert
	entries := capture.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].RequestID != "req-abc" {
		t.Errorf("RequestID = %q, want req-abc", entries[0].RequestID)
	}
	if entries[0].Fields["target_id"] != "someone" {
		t.Errorf("Fields[target_id] = %v", entries[0].Fields["target_id"])
	}
}

func TestLogger_With_AddsBaseFieldsWithoutMutatingParent(t *testing.T) {
	capture := &captureTransporter{}
	parent := New(Info, capture)
	child := parent.With("component", "reader")

	child.Info("child")
	parent.Info("parent")
	parent.Close()

	entries := capture.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Fields["component"] != "reader" {
		t.Error("child entry should carry base field")
	}
	if _, ok := entries[1].Fields["component"]; ok {
		t.Error("parent entry should not carry child base field")
	}
}

func TestDefault_NoGlobal_DiscardsSilently(t *testing.T) {
	SetDefault(nil)

	GlobalInfo("nobody listens")

	if Default() == nil {
		t.Fatal("Default() should never return nil")
	}
}

func TestBuffer_Overflow_DropsOldest(t *testing.T) {
	// Arrange: a transporter that blocks until released keeps the worker busy.
	release := make(chan struct{})
	blocking := &blockingTransporter{release: release}
	b := NewBuffer(2, blocking)

	// Act
	for i := 0; i < 10; i++ {
		b.Send(*NewEntry(Info, "entry"))
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	b.Close()

	// Assert
	if b.DroppedCount() == 0 {
		t.Error("expected some entries to be dropped")
	}
}

type blockingTransporter struct {
	release chan struct{}
}

func (b *blockingTransporter) Name() string { return "blocking" }

func (b *blockingTransporter) Write(Entry) error {
	<-b.release
	return nil
}

func (b *blockingTransporter) Close() error { return nil }

func TestBuffer_CloseTwice_IsSafe(t *testing.T) {
	b := NewBuffer(1)

	b.Close()
	b.Close()

	b.Send(*NewEntry(Info, "after close"))
}
