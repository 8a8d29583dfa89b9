package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/app"
	_ "go.trai.ch/weft/internal/wiring"
)

// TestComponentsResolve ensures every node the CLI needs is registered and
// that the dependency graph between them resolves.
func TestComponentsResolve(t *testing.T) {
	t.Chdir(t.TempDir())
	graft.DefaultCache().Clear()
	t.Cleanup(graft.DefaultCache().Clear)

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NoError(t, components.App.Close())
}
