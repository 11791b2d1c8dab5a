package model

import "time"

type MailRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Client-facing id, stable across restores unlike the row id
	EmailID string `gorm:"uniqueIndex;not null" json:"email_id"`
	UserID  uint   `gorm:"index;not null" json:"-"`

	Subject      string    `json:"subject"`
	Sender       string    `json:"sender"`
	Recipient    string    `json:"recipient"`
	ReceivedTime time.Time `json:"received_time"`

	// Path of the body content object in the blob store. Nil only while no
	// content has been persisted yet; once set it must resolve for the
	// lifetime of the row (see mailstore for the write ordering that keeps
	// this true).
	ContentRef *string `json:"content_ref"`

	HasAttachment bool      `json:"has_attachment"`
	Folder        string    `gorm:"index;default:inbox" json:"folder"`
	IsRead        bool      `json:"is_read"`
	IsStarred     bool      `json:"is_starred"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`

	Labels      []MailLabel      `gorm:"foreignKey:MailID" json:"-"`
	Attachments []MailAttachment `gorm:"foreignKey:MailID" json:"-"`
}

type MailLabel struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	MailID    uint      `gorm:"uniqueIndex:idx_mail_label;not null" json:"mail_id"`
	Label     string    `gorm:"uniqueIndex:idx_mail_label;not null" json:"label"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

type MailAttachment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MailID      uint   `gorm:"index;not null" json:"mail_id"`
	Filename    string `gorm:"not null" json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`

	// Blob store path of the attachment bytes. Same consistency contract
	// as MailRecord.ContentRef.
	StoragePath string    `gorm:"not null" json:"storage_path"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

type SystemConfig struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ConfigKey   string    `gorm:"uniqueIndex;not null" json:"config_key"`
	ConfigValue string    `gorm:"not null" json:"config_value"`
	UpdatedAt   time.Time `json:"updated_at"`
}
