package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectIsVisibleThroughParentContext(t *testing.T) {
	parent := WithRequestID(context.Background(), "req-1")
	child := context.WithValue(parent, struct{}{}, "unrelated")

	SetSubject(child, "mgr-1")

	assert.Equal(t, "req-1", GetRequestID(parent))
	assert.Equal(t, "mgr-1", Subject(parent))
}

func TestMissingMeta(t *testing.T) {
	ctx := context.Background()
	SetSubject(ctx, "ignored")
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, Subject(ctx))
}
