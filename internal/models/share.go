package models

import "time"

const (
	PermissionRead  = "read"
	PermissionWrite = "write"
)

type ShareGrant struct {
	ID         int64     `json:"id"`
	NodeID     string    `json:"node_id"`
	OwnerID    int64     `json:"owner_id"`
	GranteeID  int64     `json:"grantee_id"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Counterpart is the other side of a grant: the owner when listing what was
// shared with me, the grantee when listing what I shared.
type Counterpart struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type SharedNode struct {
	Node        Node        `json:"node"`
	Counterpart Counterpart `json:"counterpart"`
	Permission  string      `json:"permission"`
	SharedAt    time.Time   `json:"shared_at"`
}

func ValidPermission(p string) bool {
	return p == PermissionRead || p == PermissionWrite
}
