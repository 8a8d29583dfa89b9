package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/analyzer"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	loader    *mocks.MockConfigLoader
	logger    *mocks.MockLogger
	telemetry *mocks.MockTelemetry
	store     *mocks.MockStateStore
	watcher   *mocks.MockWatcher
}

func setupAppTest(t *testing.T) (*app.App, appTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := appTestMocks{
		loader:    mocks.NewMockConfigLoader(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
		store:     mocks.NewMockStateStore(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
	}
	m.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()
	vertex.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	vertex.EXPECT().Cached().AnyTimes()
	m.telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).Return(context.Background(), vertex).AnyTimes()

	fp := mocks.NewMockFingerprinter(ctrl)
	fp.EXPECT().Fingerprint(gomock.Any(), gomock.Any()).DoAndReturn(
		func(module *domain.Module, _ string) string { return "fp-" + module.Name.String() },
	).AnyTimes()

	a := app.New(m.loader, analyzer.NewAnalyzer(fp, m.telemetry, m.logger), m.logger, m.telemetry, m.store, m.watcher)
	return a, m
}

func sampleGraph(t *testing.T) *domain.ModuleGraph {
	t.Helper()
	g := domain.NewModuleGraph()
	require.NoError(t, g.AddModule(&domain.Module{
		Name:         domain.NewInternedString("app"),
		Dependencies: domain.NewInternedStrings([]string{"lib"}),
		Imports: []domain.Import{
			{From: domain.NewInternedString("lib"), Name: domain.NewInternedString("render")},
		},
	}))
	require.NoError(t, g.AddModule(&domain.Module{
		Name:         domain.NewInternedString("lib"),
		Dependencies: domain.NewInternedStrings([]string{"app"}),
		Exports:      domain.NewInternedStrings([]string{"render", "unused"}),
	}))
	return g
}

func TestApp_Roots(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil)

	entries, err := a.Roots(context.Background(), "weft.yaml")
	require.NoError(t, err)

	// app and lib form a cycle with one in-cycle dependent each.
	var buf bytes.Buffer
	require.NoError(t, app.WriteRoots(&buf, entries))
	assert.Equal(t, "lib\napp\n", buf.String())
}

func TestApp_Roots_EmptyGraph(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("").Return(domain.NewModuleGraph(), nil)

	_, err := a.Roots(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrNoEntries), "got %v", err)
}

func TestApp_Plan(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil)
	m.logger.EXPECT().Warn("unused export lib.unused").Times(1)
	m.store.EXPECT().Get("app").Return(nil, nil)
	m.store.EXPECT().Get("lib").Return(&domain.ModuleState{Module: "lib", Fingerprint: "stale"}, nil)
	m.store.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(func(states ...domain.ModuleState) error {
		require.Len(t, states, 2)
		assert.Equal(t, "app", states[0].Module)
		assert.Equal(t, "fp-app", states[0].Fingerprint)
		assert.False(t, states[0].Timestamp.IsZero())
		assert.Equal(t, "fp-lib", states[1].Fingerprint)
		return nil
	})

	plan, err := a.Plan(context.Background(), app.PlanOptions{ConfigPath: "weft.yaml", Parallelism: 1})
	require.NoError(t, err)
	require.Len(t, plan.Chunks, 2)
	assert.Equal(t, domain.NewInternedStrings([]string{"app", "lib"}), plan.Changed)

	var text bytes.Buffer
	require.NoError(t, app.WritePlanText(&text, plan))
	assert.Equal(t, "chunk lib (2 modules)\n"+
		"  lib fp-lib [shared]\n"+
		"  app fp-app [shared]\n"+
		"  circular app -> lib\n"+
		"chunk app (2 modules)\n"+
		"  app fp-app [shared]\n"+
		"  lib fp-lib [shared]\n"+
		"  circular lib -> app\n"+
		"changed\n"+
		"  app\n"+
		"  lib\n"+
		"unused exports\n"+
		"  lib.unused\n", text.String())

	var js bytes.Buffer
	require.NoError(t, app.WritePlanJSON(&js, plan))

	var decoded struct {
		Entries       []string          `json:"entries"`
		UnusedExports []map[string]any  `json:"unused_exports"`
		Fingerprints  map[string]string `json:"fingerprints"`
	}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, []string{"lib", "app"}, decoded.Entries)
	assert.Equal(t, map[string]string{"app": "fp-app", "lib": "fp-lib"}, decoded.Fingerprints)
	require.Len(t, decoded.UnusedExports, 1)
	assert.Equal(t, "lib", decoded.UnusedExports[0]["module"])
}

func TestApp_Plan_Unchanged(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil)
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.store.EXPECT().Get(gomock.Any()).DoAndReturn(func(module string) (*domain.ModuleState, error) {
		return &domain.ModuleState{Module: module, Fingerprint: "fp-" + module}, nil
	}).Times(2)
	m.store.EXPECT().Put(gomock.Any()).Times(0)

	plan, err := a.Plan(context.Background(), app.PlanOptions{ConfigPath: "weft.yaml"})
	require.NoError(t, err)
	assert.Empty(t, plan.Changed)
}

func TestApp_Plan_StoreError(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil)
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := a.Plan(context.Background(), app.PlanOptions{ConfigPath: "weft.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record module state")
}

func TestApp_Plan_LoadError(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load("missing.yaml").Return(nil, domain.ErrMissingDependency)

	_, err := a.Plan(context.Background(), app.PlanOptions{ConfigPath: "missing.yaml"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingDependency))
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Watch(t *testing.T) {
	a, m := setupAppTest(t)
	m.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	m.logger.EXPECT().Warn("unused export lib.unused").Times(2)

	gomock.InOrder(
		m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil),
		m.watcher.EXPECT().Start(gomock.Any(), "weft.yaml").Return(nil),
		m.logger.EXPECT().Info("watching weft.yaml"),
		m.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
			for _, op := range []ports.WatchOp{ports.OpWrite, ports.OpRemove, ports.OpCreate} {
				if !yield(ports.WatchEvent{Path: "weft.yaml", Operation: op}) {
					return
				}
			}
		})),
		m.loader.EXPECT().Load("weft.yaml").Return(nil, domain.ErrMissingDependency),
		m.logger.EXPECT().Error(gomock.Any()),
		m.logger.EXPECT().Warn("weft.yaml was removed"),
		m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil),
		m.watcher.EXPECT().Stop().Return(nil),
	)

	var plans []*domain.Plan
	err := a.Watch(context.Background(), app.PlanOptions{}, func(plan *domain.Plan) error {
		plans = append(plans, plan)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, plans[0].Fingerprints, plans[1].Fingerprints)
}

func TestApp_Watch_EmitError(t *testing.T) {
	a, m := setupAppTest(t)
	m.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	m.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.loader.EXPECT().Load("weft.yaml").Return(sampleGraph(t), nil)

	boom := errors.New("broken pipe")
	err := a.Watch(context.Background(), app.PlanOptions{ConfigPath: "weft.yaml"}, func(*domain.Plan) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestApp_Close(t *testing.T) {
	a, m := setupAppTest(t)
	m.telemetry.EXPECT().Close().Return(nil).Times(1)

	assert.NoError(t, a.Close())
}
