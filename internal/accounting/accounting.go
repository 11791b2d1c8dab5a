// Package accounting derives storage usage figures from the relational
// index. Usage is an estimate, not an exact accounting: body content size
// is not tracked per blob, so mail bodies are costed at a flat configured
// bytes-per-mail rate on top of the exactly-known attachment bytes.
package accounting

import (
	"context"
	"fmt"
	"time"

	"firemail/mail-api/internal/model"
	"firemail/mail-api/pkg/util"

	"gorm.io/gorm"
)

type Accountant struct {
	DB *gorm.DB

	// Flat per-mail body content estimate in bytes
	BytesPerMail int64

	// Advertised storage limit per tenant
	StorageLimit int64
}

type Counter struct {
	Count int64 `json:"count"`
}

type AttachmentUsage struct {
	Count int64 `json:"count"`
	Size  int64 `json:"size"`
}

type StorageUsage struct {
	Used           int64  `json:"used"`
	Limit          int64  `json:"limit"`
	UsedFormatted  string `json:"usedFormatted"`
	LimitFormatted string `json:"limitFormatted"`
}

type UserStats struct {
	Emails      Counter         `json:"emails"`
	Attachments AttachmentUsage `json:"attachments"`
	Labels      Counter         `json:"labels"`
	Storage     StorageUsage    `json:"storage"`
	Updated     time.Time       `json:"updated"`
}

// UserStats aggregates one tenant's usage with read-only queries. Nothing
// is maintained incrementally; every call recomputes from the index.
func (a *Accountant) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	var mailCount int64

	err := a.DB.WithContext(ctx).
		Model(model.MailRecord{}).
		Where("user_id = ?", userID).
		Count(&mailCount).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to count mail, %w", err)
	}

	var att AttachmentUsage

	err = a.DB.WithContext(ctx).
		Model(model.MailAttachment{}).
		Select("COUNT(*) AS count, COALESCE(SUM(mail_attachments.size), 0) AS size").
		Joins("JOIN mail_records ON mail_records.id = mail_attachments.mail_id").
		Where("mail_records.user_id = ?", userID).
		Scan(&att).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate attachments, %w", err)
	}

	var labelCount int64

	err = a.DB.WithContext(ctx).
		Model(model.MailLabel{}).
		Joins("JOIN mail_records ON mail_records.id = mail_labels.mail_id").
		Where("mail_records.user_id = ?", userID).
		Distinct("mail_labels.label").
		Count(&labelCount).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to count labels, %w", err)
	}

	used := att.Size + mailCount*a.BytesPerMail

	return &UserStats{
		Emails:      Counter{Count: mailCount},
		Attachments: att,
		Labels:      Counter{Count: labelCount},
		Storage: StorageUsage{
			Used:           used,
			Limit:          a.StorageLimit,
			UsedFormatted:  util.FormatBytes(used),
			LimitFormatted: util.FormatBytes(a.StorageLimit),
		},
		Updated: time.Now(),
	}, nil
}
