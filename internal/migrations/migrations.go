// Package migrations owns schema creation for every model the store
// package persists. Grounded on the teacher's AutoMigrate-on-boot habit
// (called once from the startup command before the API server binds).
package migrations

import (
	"fmt"

	"github.com/mcpmux/mcpmux/internal/model"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the core's store implementation
// depends on.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&model.Namespace{},
		&model.Endpoint{},
		&model.McpServer{},
		&model.ToolMapping{},
		&model.ToolSearchConfig{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
