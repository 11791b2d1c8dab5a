package mailstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/session"

	"gorm.io/gorm"
)

type AttachmentContent struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type attachmentRow struct {
	Filename    string
	ContentType string
	Size        int64
	StoragePath string
	UserID      uint
}

// Attachment resolves an attachment row and fetches its payload. Unlike
// mail content, a missing payload object here is a NotFound: the caller
// asked for the bytes specifically. isAdmin lets privileged callers fetch
// attachments of any tenant.
func (s *Store) Attachment(ctx context.Context, user session.UserSnapshot, attachmentID string, isAdmin bool) (*AttachmentContent, error) {
	// Attachments only have numeric row ids; anything else can't exist and
	// must not reach the integer column bind
	id, convErr := strconv.ParseUint(attachmentID, 10, 64)
	if convErr != nil {
		return nil, fail.ErrNotFound
	}

	var row attachmentRow

	err := s.DB.WithContext(ctx).
		Table("mail_attachments").
		Select("mail_attachments.filename, mail_attachments.content_type, mail_attachments.size, mail_attachments.storage_path, mail_records.user_id").
		Joins("JOIN mail_records ON mail_records.id = mail_attachments.mail_id").
		Where("mail_attachments.id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail.ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up attachment, %w", err)
	}

	if row.UserID != user.ID && !isAdmin {
		return nil, fail.ErrForbidden
	}

	data, ok, err := s.Blob.Get(ctx, row.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, fail.ErrNotFound
	}

	contentType := row.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &AttachmentContent{
		Filename:    row.Filename,
		ContentType: contentType,
		Size:        row.Size,
		Data:        data,
	}, nil
}
