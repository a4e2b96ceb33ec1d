package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gorm.io/gorm"
)

// Namespace is a logical grouping of upstream MCP servers. It carries the
// defaults every Endpoint bound to it inherits unless it overrides them.
type Namespace struct {
	ID   uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" gorm:"uniqueIndex;not null"`

	// OwnerID is nil for a publicly-owned namespace, which accepts
	// updateToolDeferLoading calls from any caller. A non-nil owner
	// restricts those calls to the matching caller, as decided by the
	// external Authorizer.
	OwnerID *uuid.UUID `json:"owner_uuid,omitempty" gorm:"type:uuid"`

	DefaultDeferLoading   bool                      `json:"default_defer_loading" gorm:"not null;default:false"`
	DefaultSearchMethod   types.SearchMethod        `json:"default_search_method" gorm:"type:varchar(20);not null;default:'NONE'"`
	DefaultToolVisibility types.ToolVisibilityMode  `json:"default_tool_visibility" gorm:"type:varchar(20);not null;default:'ALL'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// ToolSearchConfig and ToolMapping cascade-delete with the namespace
	// via store.Writer.DeleteNamespace's explicit transaction (there is no
	// database-level foreign key backing this — NamespaceID on both models
	// is a plain column, not a gorm association); they are not eagerly
	// loaded here.
}

// BeforeCreate assigns a UUID when one has not already been set by the
// caller.
func (n *Namespace) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// IsPubliclyOwned reports whether n has no owner, per §4.H's rule that
// public-ownership namespaces accept updates from any caller.
func (n *Namespace) IsPubliclyOwned() bool {
	return n.OwnerID == nil
}
