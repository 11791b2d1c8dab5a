package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"gorm.io/gorm"
)

type Builder struct {
	DB       *gorm.DB
	Blob     blob.Store
	Registry *Registry

	// Overridable in tests
	Now func() time.Time
}

func NewBuilder(db *gorm.DB, b blob.Store, reg *Registry) *Builder {
	return &Builder{DB: db, Blob: b, Registry: reg, Now: time.Now}
}

type labelRow struct {
	MailID uint
	Label  string
}

type attachmentRow struct {
	MailID uint
	AttachmentEntry
}

// BuildUserSnapshot assembles and persists one tenant snapshot, then
// registers it. The document carries blob references only; the referenced
// content and attachment objects are not copied.
func (b *Builder) BuildUserSnapshot(ctx context.Context, user session.UserSnapshot) (*Record, error) {
	var mails []model.MailRecord

	err := b.DB.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("id").
		Find(&mails).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to read mail records, %w", err)
	}

	var labels []labelRow

	err = b.DB.WithContext(ctx).
		Model(model.MailLabel{}).
		Select("mail_labels.mail_id, mail_labels.label").
		Joins("JOIN mail_records ON mail_records.id = mail_labels.mail_id").
		Where("mail_records.user_id = ?", user.ID).
		Scan(&labels).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to read labels, %w", err)
	}

	labelsByMail := make(map[uint][]string)
	for _, l := range labels {
		labelsByMail[l.MailID] = append(labelsByMail[l.MailID], l.Label)
	}

	var attachments []attachmentRow

	err = b.DB.WithContext(ctx).
		Model(model.MailAttachment{}).
		Select("mail_attachments.mail_id, mail_attachments.filename, mail_attachments.content_type, mail_attachments.size, mail_attachments.storage_path").
		Joins("JOIN mail_records ON mail_records.id = mail_attachments.mail_id").
		Where("mail_records.user_id = ?", user.ID).
		Scan(&attachments).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment metadata, %w", err)
	}

	attachmentsByMail := make(map[uint][]AttachmentEntry)
	for _, a := range attachments {
		attachmentsByMail[a.MailID] = append(attachmentsByMail[a.MailID], a.AttachmentEntry)
	}

	now := b.Now()
	doc := UserDocument{
		Version:   SchemaVersion,
		CreatedAt: now,
		User: DocumentUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
		Emails: make([]MailEntry, 0, len(mails)),
	}

	for _, m := range mails {
		entry := MailEntry{
			EmailID:       m.EmailID,
			Subject:       m.Subject,
			Sender:        m.Sender,
			Recipient:     m.Recipient,
			ReceivedTime:  m.ReceivedTime,
			ContentRef:    m.ContentRef,
			HasAttachment: m.HasAttachment,
			Folder:        m.Folder,
			IsRead:        m.IsRead,
			IsStarred:     m.IsStarred,
			CreatedAt:     m.CreatedAt,
			Labels:        labelsByMail[m.ID],
			Attachments:   attachmentsByMail[m.ID],
		}
		if entry.Labels == nil {
			entry.Labels = []string{}
		}
		if entry.Attachments == nil {
			entry.Attachments = []AttachmentEntry{}
		}

		doc.Emails = append(doc.Emails, entry)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot, %w", err)
	}

	id := fmt.Sprintf("backup_%d_%s", user.ID, pathTimestamp(now))
	path := fmt.Sprintf("backups/users/%d/%s.json", user.ID, id)

	if err := b.Blob.Put(ctx, path, raw, "application/json"); err != nil {
		return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	rec := Record{
		ID:        id,
		Path:      path,
		CreatedAt: now,
		Items:     len(doc.Emails),
		Size:      int64(len(raw)),
	}

	if err := b.Registry.Register(ctx, UserKey(user.ID), rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// BuildSystemSnapshot persists the metadata-only system snapshot: every
// user row plus the system configuration, no mail data at all.
func (b *Builder) BuildSystemSnapshot(ctx context.Context) (*Record, error) {
	var users []model.User
	if err := b.DB.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to read users, %w", err)
	}

	var configs []model.SystemConfig
	if err := b.DB.WithContext(ctx).Order("config_key").Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to read system configs, %w", err)
	}

	now := b.Now()
	doc := SystemDocument{
		Version:       SchemaVersion,
		CreatedAt:     now,
		Users:         users,
		SystemConfigs: configs,
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot, %w", err)
	}

	id := "system_backup_" + pathTimestamp(now)
	path := fmt.Sprintf("backups/system/%s.json", id)

	if err := b.Blob.Put(ctx, path, raw, "application/json"); err != nil {
		return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	rec := Record{
		ID:        id,
		Path:      path,
		CreatedAt: now,
		Items:     len(users),
		Size:      int64(len(raw)),
	}

	if err := b.Registry.Register(ctx, SystemKey, rec); err != nil {
		return nil, err
	}

	return &rec, nil
}
