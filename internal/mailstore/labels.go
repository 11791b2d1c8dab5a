package mailstore

import (
	"context"
	"fmt"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"gorm.io/gorm/clause"
)

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AddLabel tags the mail. Adding a label it already carries is a no-op,
// uniqueness is enforced on (mail id, label).
func (s *Store) AddLabel(ctx context.Context, user session.UserSnapshot, id, label string) error {
	if label == "" {
		return fmt.Errorf("%w: label is required", fail.ErrInvalidInput)
	}

	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return err
	}

	row := model.MailLabel{MailID: rec.ID, Label: label, CreatedAt: s.Now()}

	err = s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error
	if err != nil {
		return fmt.Errorf("failed to add label, %w", err)
	}

	return nil
}

func (s *Store) RemoveLabel(ctx context.Context, user session.UserSnapshot, id, label string) error {
	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return err
	}

	err = s.DB.WithContext(ctx).
		Where("mail_id = ? AND label = ?", rec.ID, label).
		Delete(model.MailLabel{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to remove label, %w", err)
	}

	return nil
}

// Labels returns every distinct label the user has, with usage counts.
func (s *Store) Labels(ctx context.Context, user session.UserSnapshot) ([]LabelCount, error) {
	counts := []LabelCount{}

	err := s.DB.WithContext(ctx).
		Model(model.MailLabel{}).
		Select("mail_labels.label, COUNT(mail_labels.mail_id) AS count").
		Joins("JOIN mail_records ON mail_records.id = mail_labels.mail_id").
		Where("mail_records.user_id = ?", user.ID).
		Group("mail_labels.label").
		Order("mail_labels.label").
		Scan(&counts).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list labels, %w", err)
	}

	return counts, nil
}
