// Package mailstore keeps the relational mail index and the blob store
// mutually consistent. There is no cross-store transaction: consistency
// comes from ordering alone. Creation writes blobs before index rows, so
// the index never references a missing object; deletion removes index rows
// before blobs, so a reader never resolves a live row to a dead object.
// A crash can only leave orphaned-but-unreferenced blobs behind.
package mailstore

import (
	"encoding/json"
	"fmt"
	"time"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/model"

	"gorm.io/gorm"
)

type Store struct {
	DB   *gorm.DB
	Blob blob.Store

	// Overridable in tests
	Now func() time.Time
}

func New(db *gorm.DB, b blob.Store) *Store {
	return &Store{DB: db, Blob: b, Now: time.Now}
}

// AttachmentUpload carries one attachment in a create request. Data is the
// base64 payload, optionally prefixed data-URI style ("...;base64,<data>").
type AttachmentUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type CreateMailRequest struct {
	Subject       string             `json:"subject" binding:"required"`
	Sender        string             `json:"sender" binding:"required"`
	Recipient     string             `json:"recipient"`
	ReceivedTime  *time.Time         `json:"received_time"`
	Content       json.RawMessage    `json:"content"`
	Folder        string             `json:"folder"`
	IsRead        bool               `json:"is_read"`
	IsStarred     bool               `json:"is_starred"`
	HasAttachment bool               `json:"has_attachment"`
	Attachments   []AttachmentUpload `json:"attachments"`
	Labels        []string           `json:"labels"`
}

type ListMailRequest struct {
	Folder string `form:"folder"`
	Label  string `form:"label"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// Mail is a full record with its blob content and child rows resolved
type Mail struct {
	model.MailRecord
	Content     json.RawMessage        `json:"content"`
	Labels      []string               `json:"labels"`
	Attachments []model.MailAttachment `json:"attachments"`
}

func contentPath(userID uint, emailID string) string {
	return fmt.Sprintf("emails/%d/%s.json", userID, emailID)
}

func attachmentPath(userID uint, emailID, filename string) string {
	return fmt.Sprintf("attachments/%d/%s/%s", userID, emailID, filename)
}
