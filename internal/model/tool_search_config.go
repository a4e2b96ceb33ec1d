package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ToolSearchConfig is a per-namespace record tuning provider behavior.
// Uniqueness: namespace. A namespace with no row implies the defaults
// applied by resolver.Resolve (maxResults=5, providerConfig=nil).
type ToolSearchConfig struct {
	gorm.Model

	NamespaceID uuid.UUID `json:"namespace_uuid" gorm:"type:uuid;not null;uniqueIndex"`

	MaxResults int `json:"max_results" gorm:"not null;default:5"`

	// ProviderConfig is opaque JSON, shaped per search method:
	// {k1?, b?, fields?} for BM25, {model?, similarity_threshold?} for
	// EMBEDDINGS, free-form otherwise. It may be null.
	ProviderConfig datatypes.JSON `json:"provider_config,omitempty" gorm:"type:jsonb"`
}
