package mailstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// lookup resolves a mail by row id or client-facing email id, scoped to the
// owner. A non-numeric id is only ever an email id and must not be bound
// against the integer id column (postgres refuses the cast). A row another
// user owns is reported exactly like a missing one.
func (s *Store) lookup(ctx context.Context, userID uint, id string) (*model.MailRecord, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)

	if n, convErr := strconv.ParseUint(id, 10, 64); convErr == nil {
		q = q.Where("id = ? OR email_id = ?", n, id)
	} else {
		q = q.Where("email_id = ?", id)
	}

	var rec model.MailRecord

	err := q.First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail.ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up mail, %w", err)
	}

	return &rec, nil
}

// Get returns the full mail: index row, blob content, labels and attachment
// rows. A missing content object is tolerated (the index and blob store may
// transiently diverge on read) and surfaces as empty content, not an error.
// Reading an unread mail flips it to read, best-effort.
func (s *Store) Get(ctx context.Context, user session.UserSnapshot, id string) (*Mail, error) {
	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	mail := &Mail{MailRecord: *rec, Content: []byte("{}"), Labels: []string{}}

	if rec.ContentRef != nil {
		data, ok, err := s.Blob.Get(ctx, *rec.ContentRef)
		if err != nil || !ok {
			zap.L().Warn("Mail content unavailable",
				zap.String("email_id", rec.EmailID),
				zap.String("content_ref", *rec.ContentRef),
				zap.Error(err))
		} else {
			mail.Content = data
		}
	}

	err = s.DB.WithContext(ctx).
		Model(model.MailLabel{}).
		Where("mail_id = ?", rec.ID).
		Pluck("label", &mail.Labels).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load labels, %w", err)
	}

	err = s.DB.WithContext(ctx).
		Where("mail_id = ?", rec.ID).
		Find(&mail.Attachments).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments, %w", err)
	}

	if !rec.IsRead {
		err := s.DB.WithContext(ctx).
			Model(model.MailRecord{}).
			Where("id = ?", rec.ID).
			Update("is_read", true).
			Error
		if err != nil {
			// The read itself still succeeds
			zap.L().Warn("Failed to mark mail as read", zap.Error(err))
		} else {
			mail.IsRead = true
		}
	}

	return mail, nil
}
