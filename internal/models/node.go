package models

import "time"

type Node struct {
	ID          string     `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	ParentID    *string    `json:"parent_id"`
	Name        string     `json:"name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	StorageKey  string     `json:"-"`
	IsFolder    bool       `json:"is_folder"`
	IsStarred   bool       `json:"is_starred"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
