package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/internal/apperr"
	"github.com/mcpmux/mcpmux/internal/model"
	"github.com/mcpmux/mcpmux/internal/sanitize"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gorm.io/gorm"
)

// GormStore is the default Store implementation, grounded on the teacher's
// db.Where(...).First(...) / db.Save(...) idiom (internal/service/user,
// internal/service/mcp/tool.go) and its errors.Is(gorm.ErrRecordNotFound)
// translation.
type GormStore struct {
	db          *gorm.DB
	invalidator Invalidator
}

// NewGormStore returns a GormStore. invalidator receives the
// cache-invalidation signal §4.G requires after every write; passing nil
// disables invalidation (only appropriate in tests that don't exercise the
// resolver cache).
func NewGormStore(db *gorm.DB, invalidator Invalidator) *GormStore {
	return &GormStore{db: db, invalidator: invalidator}
}

// SetInvalidator assigns the invalidator to notify after writes. It exists
// because the resolver cache (the invalidator) is itself constructed from a
// store.Reader — callers that wire up both construct the store with a nil
// invalidator first, then close the loop with SetInvalidator once the cache
// exists.
func (s *GormStore) SetInvalidator(invalidator Invalidator) {
	s.invalidator = invalidator
}

func (s *GormStore) FindNamespace(ctx context.Context, id uuid.UUID) (*model.Namespace, error) {
	var ns model.Namespace
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ns).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound(fmt.Sprintf("namespace %s not found", id), err)
		}
		return nil, apperr.NewStore("failed to find namespace", err)
	}
	return &ns, nil
}

func (s *GormStore) FindEndpoint(ctx context.Context, id uuid.UUID) (*model.Endpoint, error) {
	var ep model.Endpoint
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&ep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound(fmt.Sprintf("endpoint %s not found", id), err)
		}
		return nil, apperr.NewStore("failed to find endpoint", err)
	}
	return &ep, nil
}

func (s *GormStore) FindToolDeferLoadingOverrides(
	ctx context.Context, namespaceID uuid.UUID,
) (map[string]bool, error) {
	type row struct {
		ServerName   string
		ToolName     string
		DeferLoading types.DeferLoadingBehavior
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table("tool_mappings").
		Select("mcp_servers.name AS server_name, tool_mappings.tool_name AS tool_name, tool_mappings.defer_loading AS defer_loading").
		Joins("JOIN mcp_servers ON mcp_servers.id = tool_mappings.server_id").
		Where("tool_mappings.namespace_id = ? AND tool_mappings.defer_loading IN (?)",
			namespaceID, []types.DeferLoadingBehavior{types.DeferLoadingEnabled, types.DeferLoadingDisabled}).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.NewStore("failed to load tool defer-loading overrides", err)
	}

	overrides := make(map[string]bool, len(rows))
	for _, r := range rows {
		publicName := sanitize.PublicToolName(r.ServerName, r.ToolName)
		overrides[publicName] = r.DeferLoading == types.DeferLoadingEnabled
	}
	return overrides, nil
}

func (s *GormStore) FindToolSearchConfig(ctx context.Context, namespaceID uuid.UUID) (*model.ToolSearchConfig, error) {
	var cfg model.ToolSearchConfig
	err := s.db.WithContext(ctx).Where("namespace_id = ?", namespaceID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.NewStore("failed to find tool search config", err)
	}
	return &cfg, nil
}

func (s *GormStore) EndpointsByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.Endpoint{}).
		Where("namespace_id = ?", namespaceID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperr.NewStore("failed to list endpoints for namespace", err)
	}
	return ids, nil
}

func (s *GormStore) ToolMappingsByServer(ctx context.Context, namespaceID, serverID uuid.UUID) ([]model.ToolMapping, error) {
	var mappings []model.ToolMapping
	err := s.db.WithContext(ctx).
		Where("namespace_id = ? AND server_id = ?", namespaceID, serverID).
		Find(&mappings).Error
	if err != nil {
		return nil, apperr.NewStore("failed to list tool mappings for server", err)
	}
	return mappings, nil
}

func (s *GormStore) ServersByNamespace(ctx context.Context, namespaceID uuid.UUID) ([]model.McpServer, error) {
	var servers []model.McpServer
	err := s.db.WithContext(ctx).Where("namespace_id = ?", namespaceID).Find(&servers).Error
	if err != nil {
		return nil, apperr.NewStore("failed to list mcp servers for namespace", err)
	}
	return servers, nil
}

func (s *GormStore) UpdateNamespace(ctx context.Context, ns *model.Namespace) error {
	if err := s.db.WithContext(ctx).Save(ns).Error; err != nil {
		return apperr.NewStore("failed to update namespace", err)
	}
	s.invalidateNamespace(ctx, ns.ID)
	return nil
}

// DeleteNamespace removes the namespace and its ToolSearchConfig/ToolMapping
// rows in one transaction, per spec.md §3 Invariant 2. GORM's AutoMigrate
// (internal/migrations) never declares these as belongs-to associations —
// NamespaceID is a plain uuid.UUID column on both child models — so there is
// no database-level foreign key for GORM to cascade through; the delete is
// issued explicitly here instead. Endpoints are left alone: only
// ToolSearchConfig and ToolMapping are named as cascading.
func (s *GormStore) DeleteNamespace(ctx context.Context, id uuid.UUID) error {
	endpointIDs, err := s.EndpointsByNamespace(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("namespace_id = ?", id).Delete(&model.ToolMapping{}).Error; err != nil {
			return err
		}
		if err := tx.Where("namespace_id = ?", id).Delete(&model.ToolSearchConfig{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Namespace{}).Error
	})
	if err != nil {
		return apperr.NewStore("failed to delete namespace", err)
	}

	if s.invalidator != nil {
		for _, epID := range endpointIDs {
			s.invalidator.Invalidate(epID)
		}
	}
	return nil
}

func (s *GormStore) UpdateEndpoint(ctx context.Context, ep *model.Endpoint) error {
	if err := s.db.WithContext(ctx).Save(ep).Error; err != nil {
		return apperr.NewStore("failed to update endpoint", err)
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ep.ID)
	}
	return nil
}

func (s *GormStore) UpsertToolSearchConfig(ctx context.Context, cfg *model.ToolSearchConfig) error {
	err := s.db.WithContext(ctx).
		Where("namespace_id = ?", cfg.NamespaceID).
		Assign(model.ToolSearchConfig{
			MaxResults:     cfg.MaxResults,
			ProviderConfig: cfg.ProviderConfig,
		}).
		FirstOrCreate(cfg).Error
	if err != nil {
		return apperr.NewStore("failed to upsert tool search config", err)
	}
	s.invalidateNamespace(ctx, cfg.NamespaceID)
	return nil
}

func (s *GormStore) UpdateToolDeferLoading(
	ctx context.Context,
	namespaceID, serverID uuid.UUID,
	toolName string,
	behavior types.DeferLoadingBehavior,
) error {
	var mapping model.ToolMapping
	err := s.db.WithContext(ctx).
		Where("namespace_id = ? AND server_id = ? AND tool_name = ?", namespaceID, serverID, toolName).
		First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			mapping = model.ToolMapping{
				NamespaceID: namespaceID,
				ServerID:    serverID,
				ToolName:    toolName,
			}
		} else {
			return apperr.NewStore("failed to find tool mapping", err)
		}
	}
	mapping.DeferLoading = behavior

	if err := s.db.WithContext(ctx).Save(&mapping).Error; err != nil {
		return apperr.NewStore("failed to update tool defer-loading override", err)
	}
	s.invalidateNamespace(ctx, namespaceID)
	return nil
}

func (s *GormStore) CreateServer(ctx context.Context, server *model.McpServer) error {
	existing, err := s.ServersByNamespace(ctx, server.NamespaceID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if sanitize.Name(e.Name) == sanitize.Name(server.Name) {
			return apperr.NewInvalid(fmt.Sprintf(
				"server name %q collides with existing server %q after sanitization", server.Name, e.Name,
			), nil)
		}
	}
	if err := s.db.WithContext(ctx).Create(server).Error; err != nil {
		return apperr.NewStore("failed to create mcp server", err)
	}
	return nil
}

func (s *GormStore) invalidateNamespace(ctx context.Context, namespaceID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	endpointIDs, err := s.EndpointsByNamespace(ctx, namespaceID)
	if err != nil {
		return
	}
	for _, id := range endpointIDs {
		s.invalidator.Invalidate(id)
	}
}
