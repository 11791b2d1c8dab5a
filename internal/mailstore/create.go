package mailstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Create persists a new mail. The body content goes to the blob store
// before the index row is inserted, and every attachment follows the same
// blob-then-row order, so a crash mid-way leaves at worst an unreferenced
// object. Malformed attachments are skipped, not fatal. Labels go in last,
// once the mail row exists.
func (s *Store) Create(ctx context.Context, user session.UserSnapshot, req CreateMailRequest) (*model.MailRecord, error) {
	if req.Subject == "" || req.Sender == "" {
		return nil, fmt.Errorf("%w: subject and sender are required", fail.ErrInvalidInput)
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate email id, %w", err)
	}

	now := s.Now()
	emailID := fmt.Sprintf("email_%d_%s", now.UnixMilli(), suffix)

	content := req.Content
	if len(content) == 0 {
		content = []byte("{}")
	}

	ref := contentPath(user.ID, emailID)
	if err := s.Blob.Put(ctx, ref, content, "application/json"); err != nil {
		return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
	}

	received := now
	if req.ReceivedTime != nil {
		received = *req.ReceivedTime
	}

	folder := req.Folder
	if folder == "" {
		folder = "inbox"
	}

	rec := model.MailRecord{
		EmailID:       emailID,
		UserID:        user.ID,
		Subject:       req.Subject,
		Sender:        req.Sender,
		Recipient:     req.Recipient,
		ReceivedTime:  received,
		ContentRef:    &ref,
		HasAttachment: req.HasAttachment || len(req.Attachments) > 0,
		Folder:        folder,
		IsRead:        req.IsRead,
		IsStarred:     req.IsStarred,
		CreatedAt:     now,
	}

	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("failed to insert mail record, %w", err)
	}

	for _, att := range req.Attachments {
		data, ok := decodeAttachment(att)
		if !ok {
			zap.L().Warn("Skipping malformed attachment",
				zap.String("email_id", emailID),
				zap.String("filename", att.Filename))
			continue
		}

		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		path := attachmentPath(user.ID, emailID, att.Filename)
		if err := s.Blob.Put(ctx, path, data, contentType); err != nil {
			return nil, fmt.Errorf("%w: %v", fail.ErrStoreUnavailable, err)
		}

		row := model.MailAttachment{
			MailID:      rec.ID,
			Filename:    att.Filename,
			ContentType: contentType,
			Size:        int64(len(data)),
			StoragePath: path,
			CreatedAt:   now,
		}
		if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to insert attachment record, %w", err)
		}
	}

	for _, label := range req.Labels {
		if label == "" {
			continue
		}

		row := model.MailLabel{MailID: rec.ID, Label: label, CreatedAt: now}
		if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to insert label, %w", err)
		}
	}

	return &rec, nil
}

func decodeAttachment(att AttachmentUpload) ([]byte, bool) {
	if att.Filename == "" || att.Data == "" {
		return nil, false
	}

	raw := att.Data
	if i := strings.Index(raw, "base64,"); i >= 0 {
		raw = raw[i+len("base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) == 0 {
		return nil, false
	}

	return data, true
}
