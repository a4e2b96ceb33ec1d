package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeInvalidator struct {
	invalidated []uuid.UUID
}

func (f *fakeInvalidator) Invalidate(endpointID uuid.UUID) {
	f.invalidated = append(f.invalidated, endpointID)
}

func newTestStore(t *testing.T) (*GormStore, *gorm.DB, *fakeInvalidator) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Namespace{}, &model.Endpoint{}, &model.McpServer{}, &model.ToolMapping{}, &model.ToolSearchConfig{},
	))

	inv := &fakeInvalidator{}
	return NewGormStore(db, inv), db, inv
}

func TestDeleteNamespace_RemovesToolSearchConfigAndToolMappings(t *testing.T) {
	s, db, _ := newTestStore(t)
	ns := &model.Namespace{ID: uuid.New(), Name: "ns-1"}
	require.NoError(t, db.Create(ns).Error)

	cfg := &model.ToolSearchConfig{NamespaceID: ns.ID, MaxResults: 5}
	require.NoError(t, db.Create(cfg).Error)

	mapping := &model.ToolMapping{NamespaceID: ns.ID, ServerID: uuid.New(), ToolName: "do_thing"}
	require.NoError(t, db.Create(mapping).Error)

	require.NoError(t, s.DeleteNamespace(context.Background(), ns.ID))

	var nsCount, cfgCount, mappingCount int64
	require.NoError(t, db.Model(&model.Namespace{}).Where("id = ?", ns.ID).Count(&nsCount).Error)
	require.NoError(t, db.Model(&model.ToolSearchConfig{}).Where("namespace_id = ?", ns.ID).Count(&cfgCount).Error)
	require.NoError(t, db.Model(&model.ToolMapping{}).Where("namespace_id = ?", ns.ID).Count(&mappingCount).Error)

	require.Zero(t, nsCount)
	require.Zero(t, cfgCount)
	require.Zero(t, mappingCount)
}

func TestDeleteNamespace_LeavesEndpointsAndOtherNamespacesIntact(t *testing.T) {
	s, db, inv := newTestStore(t)
	ns := &model.Namespace{ID: uuid.New(), Name: "ns-1"}
	require.NoError(t, db.Create(ns).Error)

	other := &model.Namespace{ID: uuid.New(), Name: "ns-2"}
	require.NoError(t, db.Create(other).Error)
	otherCfg := &model.ToolSearchConfig{NamespaceID: other.ID, MaxResults: 5}
	require.NoError(t, db.Create(otherCfg).Error)

	ep := &model.Endpoint{ID: uuid.New(), NamespaceID: ns.ID, Name: "ep-1"}
	require.NoError(t, db.Create(ep).Error)

	require.NoError(t, s.DeleteNamespace(context.Background(), ns.ID))

	var ep2 model.Endpoint
	require.NoError(t, db.Where("id = ?", ep.ID).First(&ep2).Error, "endpoints are not named as cascading and must survive")

	var otherCount int64
	require.NoError(t, db.Model(&model.ToolSearchConfig{}).Where("namespace_id = ?", other.ID).Count(&otherCount).Error)
	require.EqualValues(t, 1, otherCount, "deleting one namespace must not touch another namespace's config")

	require.Contains(t, inv.invalidated, ep.ID, "deleting a namespace must invalidate the cache for each of its endpoints")
}

func TestDeleteNamespace_UnknownIDIsANoOp(t *testing.T) {
	s, _, _ := newTestStore(t)
	require.NoError(t, s.DeleteNamespace(context.Background(), uuid.New()))
}
