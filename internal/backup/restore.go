package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Restorer replays a snapshot object back into the relational store.
//
// Restores are NOT transactional: thousands of rows are replaced one by
// one, and a failure midway leaves the tenant partially restored with no
// rollback. Callers must treat a restore as best attempted once and never
// auto-retry, or partially-applied rows get duplicated. This is the
// largest accepted correctness risk in the system.
type Restorer struct {
	DB   *gorm.DB
	Blob blob.Store
}

type RestoreResult struct {
	UserID       uint `json:"user_id,omitempty"`
	EmailsCount  int  `json:"emails_count,omitempty"`
	ConfigsCount int  `json:"configs_count,omitempty"`
}

func (r *Restorer) fetch(ctx context.Context, path string, doc any) error {
	if path == "" {
		return fmt.Errorf("%w: backup path is required", fail.ErrInvalidInput)
	}

	raw, ok, err := r.Blob.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}
	if !ok {
		return fail.ErrNotFound
	}

	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("%w: malformed snapshot document", fail.ErrInvalidInput)
	}

	return nil
}

// RestoreSystem upserts every config key from the snapshot, replace
// semantics per key. User and mail rows are never touched.
func (r *Restorer) RestoreSystem(ctx context.Context, path string) (*RestoreResult, error) {
	var doc SystemDocument
	if err := r.fetch(ctx, path, &doc); err != nil {
		return nil, err
	}

	now := time.Now()
	for _, cfg := range doc.SystemConfigs {
		row := model.SystemConfig{
			ConfigKey:   cfg.ConfigKey,
			ConfigValue: cfg.ConfigValue,
			UpdatedAt:   now,
		}

		err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "config_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at"}),
			}).
			Create(&row).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to upsert config %s, %w", cfg.ConfigKey, err)
		}
	}

	return &RestoreResult{ConfigsCount: len(doc.SystemConfigs)}, nil
}

// RestoreUser destructively replaces the target user's entire mail state
// with the snapshot's. The user row itself must already exist; restore
// never creates identities. Mail rows receive fresh relational ids, labels
// and attachment metadata are re-attached under them, and blob storage
// paths are carried over verbatim — content is not re-uploaded, so blobs
// that were independently removed since the snapshot stay missing.
func (r *Restorer) RestoreUser(ctx context.Context, path string) (*RestoreResult, error) {
	var doc UserDocument
	if err := r.fetch(ctx, path, &doc); err != nil {
		return nil, err
	}

	userID := doc.User.ID

	var exists model.User
	if err := r.DB.WithContext(ctx).First(&exists, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d does not exist", fail.ErrInvalidInput, userID)
		}

		return nil, fmt.Errorf("failed to check user, %w", err)
	}

	mailIDs := r.DB.Model(model.MailRecord{}).Select("id").Where("user_id = ?", userID)

	if err := r.DB.WithContext(ctx).Where("mail_id IN (?)", mailIDs).Delete(model.MailLabel{}).Error; err != nil {
		return nil, fmt.Errorf("failed to clear labels, %w", err)
	}

	if err := r.DB.WithContext(ctx).Where("mail_id IN (?)", mailIDs).Delete(model.MailAttachment{}).Error; err != nil {
		return nil, fmt.Errorf("failed to clear attachments, %w", err)
	}

	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(model.MailRecord{}).Error; err != nil {
		return nil, fmt.Errorf("failed to clear mail records, %w", err)
	}

	now := time.Now()
	for _, entry := range doc.Emails {
		rec := model.MailRecord{
			EmailID:       entry.EmailID,
			UserID:        userID,
			Subject:       entry.Subject,
			Sender:        entry.Sender,
			Recipient:     entry.Recipient,
			ReceivedTime:  entry.ReceivedTime,
			ContentRef:    entry.ContentRef,
			HasAttachment: entry.HasAttachment,
			Folder:        entry.Folder,
			IsRead:        entry.IsRead,
			IsStarred:     entry.IsStarred,
			CreatedAt:     entry.CreatedAt,
		}

		if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
			return nil, fmt.Errorf("failed to restore mail %s, %w", entry.EmailID, err)
		}

		for _, label := range entry.Labels {
			row := model.MailLabel{MailID: rec.ID, Label: label, CreatedAt: now}
			if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
				return nil, fmt.Errorf("failed to restore label on %s, %w", entry.EmailID, err)
			}
		}

		for _, att := range entry.Attachments {
			row := model.MailAttachment{
				MailID:      rec.ID,
				Filename:    att.Filename,
				ContentType: att.ContentType,
				Size:        att.Size,
				StoragePath: att.StoragePath,
				CreatedAt:   now,
			}
			if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
				return nil, fmt.Errorf("failed to restore attachment on %s, %w", entry.EmailID, err)
			}
		}
	}

	return &RestoreResult{UserID: userID, EmailsCount: len(doc.Emails)}, nil
}
