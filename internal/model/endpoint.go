package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcpmux/mcpmux/pkg/types"
	"gorm.io/gorm"
)

// Endpoint is a client-visible projection of exactly one Namespace. Each of
// its three overrides is a tri-state sentinel (never a nullable boolean) so
// "unset" and "deliberately false" remain distinguishable.
type Endpoint struct {
	ID            uuid.UUID `json:"uuid" gorm:"type:uuid;primaryKey"`
	NamespaceID   uuid.UUID `json:"namespace_uuid" gorm:"type:uuid;not null;index"`
	Name          string    `json:"name" gorm:"not null"`

	OverrideDeferLoading  types.DeferLoadingBehavior         `json:"override_defer_loading" gorm:"type:varchar(20);not null;default:'INHERIT'"`
	OverrideSearchMethod  types.EndpointSearchMethodOverride `json:"override_search_method" gorm:"type:varchar(20);not null;default:'INHERIT'"`
	OverrideToolVisibility types.ToolVisibilityMode          `json:"override_tool_visibility" gorm:"type:varchar(20);not null;default:'INHERIT'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns a UUID when one has not already been set by the
// caller.
func (e *Endpoint) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName names Endpoint's table. No uniqueness constraint on
// (namespace_id, name) is declared, here or in a struct tag.
func (Endpoint) TableName() string {
	return "endpoints"
}
