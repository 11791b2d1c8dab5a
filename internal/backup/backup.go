// Package backup exports and re-imports consistent snapshots of tenant or
// system state across the three stores. A snapshot is one self-describing
// JSON object in the blob store; the registry of available snapshots lives
// in the key-value store as a bounded, oldest-first list per tenant.
package backup

import (
	"fmt"
	"time"

	"firemail/mail-api/internal/model"
)

// SchemaVersion is embedded in every snapshot document
const SchemaVersion = "1.0.0"

// Record describes one snapshot artifact in the registry
type Record struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Items     int       `json:"items_count"`
	Size      int64     `json:"size"`
}

// UserDocument is a tenant snapshot: the full mail index with nested labels
// and attachment metadata. Blob content is referenced by path, never
// embedded.
type UserDocument struct {
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	User      DocumentUser `json:"user"`
	Emails    []MailEntry  `json:"emails"`
}

type DocumentUser struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type MailEntry struct {
	EmailID       string            `json:"email_id"`
	Subject       string            `json:"subject"`
	Sender        string            `json:"sender"`
	Recipient     string            `json:"recipient"`
	ReceivedTime  time.Time         `json:"received_time"`
	ContentRef    *string           `json:"content_ref"`
	HasAttachment bool              `json:"has_attachment"`
	Folder        string            `json:"folder"`
	IsRead        bool              `json:"is_read"`
	IsStarred     bool              `json:"is_starred"`
	CreatedAt     time.Time         `json:"created_at"`
	Labels        []string          `json:"labels"`
	Attachments   []AttachmentEntry `json:"attachments"`
}

type AttachmentEntry struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	StoragePath string `json:"storage_path"`
}

// SystemDocument is metadata-only: users and system configuration, no
// per-tenant mail.
type SystemDocument struct {
	Version       string               `json:"version"`
	CreatedAt     time.Time            `json:"created_at"`
	Users         []model.User         `json:"users"`
	SystemConfigs []model.SystemConfig `json:"system_configs"`
}

// UserKey is the registry key for one tenant's snapshots
func UserKey(userID uint) string {
	return fmt.Sprintf("backups:user:%d", userID)
}

// SystemKey is the registry key for system snapshots
const SystemKey = "backups:system"

// pathTimestamp renders a time the way snapshot object names expect,
// with filesystem/key-safe separators.
func pathTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15_04_05Z")
}
