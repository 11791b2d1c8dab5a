package mailstore

import (
	"context"
	"fmt"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"
)

type StatusUpdate struct {
	IsRead    *bool `json:"is_read"`
	IsStarred *bool `json:"is_starred"`
}

// SetStatus updates the read/starred flags. At least one must be present.
func (s *Store) SetStatus(ctx context.Context, user session.UserSnapshot, id string, upd StatusUpdate) (*model.MailRecord, error) {
	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if upd.IsRead != nil {
		changes["is_read"] = *upd.IsRead
		rec.IsRead = *upd.IsRead
	}
	if upd.IsStarred != nil {
		changes["is_starred"] = *upd.IsStarred
		rec.IsStarred = *upd.IsStarred
	}

	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: no status fields provided", fail.ErrInvalidInput)
	}

	err = s.DB.WithContext(ctx).
		Model(model.MailRecord{}).
		Where("id = ?", rec.ID).
		Updates(changes).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to update mail status, %w", err)
	}

	return rec, nil
}

// Move puts the mail into another folder. Folders are free-form strings.
func (s *Store) Move(ctx context.Context, user session.UserSnapshot, id, folder string) (*model.MailRecord, error) {
	if folder == "" {
		return nil, fmt.Errorf("%w: folder is required", fail.ErrInvalidInput)
	}

	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).
		Model(model.MailRecord{}).
		Where("id = ?", rec.ID).
		Update("folder", folder).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to move mail, %w", err)
	}

	rec.Folder = folder
	return rec, nil
}
