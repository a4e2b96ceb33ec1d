package toolsearch

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/apperr"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/store"
	"github.com/mcpmux/mcpmux/pkg/types"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubAuthorizer struct {
	allow bool
}

func (s stubAuthorizer) CanManageNamespace(uuid.UUID, *uuid.UUID) bool {
	return s.allow
}

func newTestService(t *testing.T, allow bool) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Namespace{}, &model.Endpoint{}, &model.ToolMapping{}, &model.ToolSearchConfig{},
	))

	s := store.NewGormStore(db, nil)
	return New(s, stubAuthorizer{allow: allow}, nil), db
}

func mustCreateNamespace(t *testing.T, db *gorm.DB, owner *uuid.UUID) *model.Namespace {
	ns := &model.Namespace{ID: uuid.New(), Name: "ns-" + uuid.NewString(), OwnerID: owner}
	require.NoError(t, db.Create(ns).Error)
	return ns
}

func TestGet_NoConfigReturnsSuccessWithNoData(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)

	result := svc.Get(context.Background(), ns.ID)
	require.True(t, result.Success)
	require.Nil(t, result.Data)
}

func TestUpsert_RoundTripsThroughGet(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)

	result, err := svc.Upsert(context.Background(), types.UpsertToolSearchConfigInput{
		NamespaceUUID:  ns.ID,
		MaxResults:     10,
		ProviderConfig: map[string]any{"k1": 1.2, "b": 0.75},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 10, result.Data.MaxResults)

	fetched := svc.Get(context.Background(), ns.ID)
	require.True(t, fetched.Success)
	require.NotNil(t, fetched.Data)
	require.Equal(t, 10, fetched.Data.MaxResults)
	require.InDelta(t, 1.2, fetched.Data.ProviderConfig["k1"], 0.0001)
}

func TestUpsert_MaxResultsOutOfBounds(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)

	_, err := svc.Upsert(context.Background(), types.UpsertToolSearchConfigInput{
		NamespaceUUID: ns.ID,
		MaxResults:    21,
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Invalid))

	_, err = svc.Upsert(context.Background(), types.UpsertToolSearchConfigInput{
		NamespaceUUID: ns.ID,
		MaxResults:    0,
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Invalid))
}

func TestUpsert_BM25ParamsOutOfBounds(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)

	_, err := svc.Upsert(context.Background(), types.UpsertToolSearchConfigInput{
		NamespaceUUID:  ns.ID,
		MaxResults:     5,
		ProviderConfig: map[string]any{"k1": 3.5},
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Invalid))

	_, err = svc.Upsert(context.Background(), types.UpsertToolSearchConfigInput{
		NamespaceUUID:  ns.ID,
		MaxResults:     5,
		ProviderConfig: map[string]any{"b": 1.5},
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.Invalid))
}

func TestUpdateToolDeferLoading_NamespaceNotFound(t *testing.T) {
	svc, _ := newTestService(t, true)

	result := svc.UpdateToolDeferLoading(context.Background(), uuid.New(), types.UpdateToolDeferLoadingInput{
		NamespaceUUID: uuid.New(),
		ServerUUID:    uuid.New(),
		ToolUUID:      uuid.New(),
		DeferLoading:  types.DeferLoadingEnabled,
	})
	require.False(t, result.Success)
	require.Equal(t, "Namespace not found", result.Message)
}

func TestUpdateToolDeferLoading_AccessDeniedOnOwnedNamespace(t *testing.T) {
	svc, db := newTestService(t, false)
	owner := uuid.New()
	ns := mustCreateNamespace(t, db, &owner)

	result := svc.UpdateToolDeferLoading(context.Background(), uuid.New(), types.UpdateToolDeferLoadingInput{
		NamespaceUUID: ns.ID,
		ServerUUID:    uuid.New(),
		ToolUUID:      uuid.New(),
		DeferLoading:  types.DeferLoadingEnabled,
	})
	require.False(t, result.Success)
	require.Equal(t, "Access denied", result.Message)
}

func TestUpdateToolDeferLoading_PubliclyOwnedAcceptsAnyCaller(t *testing.T) {
	svc, db := newTestService(t, false)
	ns := mustCreateNamespace(t, db, nil)
	serverID := uuid.New()

	mapping := &model.ToolMapping{NamespaceID: ns.ID, ServerID: serverID, ToolName: "do_thing"}
	require.NoError(t, db.Create(mapping).Error)

	result := svc.UpdateToolDeferLoading(context.Background(), uuid.New(), types.UpdateToolDeferLoadingInput{
		NamespaceUUID: ns.ID,
		ServerUUID:    serverID,
		ToolUUID:      mapping.ToolUUID(),
		DeferLoading:  types.DeferLoadingEnabled,
	})
	require.True(t, result.Success)

	var reloaded model.ToolMapping
	require.NoError(t, db.Where("id = ?", mapping.ID).First(&reloaded).Error)
	require.Equal(t, types.DeferLoadingEnabled, reloaded.DeferLoading)
}

func TestUpdateToolDeferLoading_UnknownToolUUID(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)
	serverID := uuid.New()

	result := svc.UpdateToolDeferLoading(context.Background(), uuid.New(), types.UpdateToolDeferLoadingInput{
		NamespaceUUID: ns.ID,
		ServerUUID:    serverID,
		ToolUUID:      uuid.New(),
		DeferLoading:  types.DeferLoadingEnabled,
	})
	require.False(t, result.Success)
	require.Equal(t, "Tool not found in namespace", result.Message)
}

func TestUpdateToolDeferLoading_InvalidDeferLoadingValue(t *testing.T) {
	svc, db := newTestService(t, true)
	ns := mustCreateNamespace(t, db, nil)

	result := svc.UpdateToolDeferLoading(context.Background(), uuid.New(), types.UpdateToolDeferLoadingInput{
		NamespaceUUID: ns.ID,
		ServerUUID:    uuid.New(),
		ToolUUID:      uuid.New(),
		DeferLoading:  types.DeferLoadingBehavior("BOGUS"),
	})
	require.False(t, result.Success)
}
