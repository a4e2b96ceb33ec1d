package model

import "github.com/google/uuid"

// Owner is the minimal identity the core needs to decide whether a caller
// may mutate an owned namespace. It intentionally carries no roles,
// passwords, or tokens: deciding whether a given Owner legitimately
// represents the current request is the job of the external Authorizer
// (defined below and consulted by internal/service/toolsearch), not this
// package.
type Owner struct {
	ID   uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// Authorizer is consulted before a write touches an owned namespace. It is
// an external collaborator: authentication and authorization are explicitly
// out of scope for the core.
type Authorizer interface {
	// CanManageNamespace reports whether callerID may mutate the namespace
	// owned by ownerID. A nil ownerID means the namespace is publicly
	// owned and every caller is permitted.
	CanManageNamespace(callerID uuid.UUID, ownerID *uuid.UUID) bool
}

// OwnerMatchAuthorizer is the default Authorizer: a caller may manage a
// publicly owned namespace or one it owns outright, nothing else.
// Deployments that need group/role-based management plug in their own
// Authorizer instead.
type OwnerMatchAuthorizer struct{}

func (OwnerMatchAuthorizer) CanManageNamespace(callerID uuid.UUID, ownerID *uuid.UUID) bool {
	return ownerID == nil || *ownerID == callerID
}
