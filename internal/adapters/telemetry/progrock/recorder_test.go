package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/telemetry/progrock"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_Integration(t *testing.T) {
	recorder := progrock.New()

	ctx, vertex := recorder.Record(context.Background(), "chunk app")

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("modules: 3\n"))
	require.NoError(t, err)

	vertex.Log(domain.LogLevelDebug, "debug msg")
	vertex.Log(domain.LogLevelWarn, "warn msg")
	vertex.Complete(nil)

	_, failed := recorder.Record(ctx, "chunk lib", ports.WithInternal())
	failed.Complete(errors.New("boom"))

	_, cached := recorder.Record(ctx, "facts")
	cached.Cached()
	cached.Complete(nil)

	require.NoError(t, recorder.Close())
}
