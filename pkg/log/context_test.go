package log

import (
	"context"
	"testing"
)

func TestRequestIDFromContext_NilContext_ReturnsEmpty(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	if id := RequestIDFromContext(nil); id != "" {
		t.Errorf("got %q, want empty", id)
	}
}

func TestWithFields_MergesWithExisting(t *testing.T) {
	ctx := WithFields(context.Background(), "a", 1)
	ctx = WithFields(ctx, "b", 2, "a", 3)

	fields := FieldsFromContext(ctx)
	if fields["a"] != 3 || fields["b"] != 2 {
		t.Errorf("got %v, want a=3 b=2", fields)
	}
}

func TestWithFields_DoesNotMutateParent(t *testing.T) {
	parent := WithFields(context.Background(), "a", 1)
	_ = WithFields(parent, "b", 2)

	if _, ok := FieldsFromContext(parent)["b"]; ok {
		t.Error("parent context fields were mutated")
	}
}
