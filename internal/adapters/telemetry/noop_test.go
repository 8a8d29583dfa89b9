package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

func TestNoOp_Record(t *testing.T) {
	tel := telemetry.NewNoOp()

	ctx, vertex := tel.Record(context.Background(), "roots")
	require.NotNil(t, vertex)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	n, err := vertex.Stdout().Write([]byte("discarded"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	vertex.Log(domain.LogLevelInfo, "msg")
	vertex.Cached()
	vertex.Complete(errors.New("ignored"))
	assert.NoError(t, tel.Close())
}
