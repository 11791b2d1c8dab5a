package mailstore

import (
	"context"
	"fmt"
	"sync"

	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delete removes a mail and everything attached to it. The relational rows
// go first, in one transaction: once they are gone the mail is gone, no
// matter what happens to the blobs. Blob deletions then run concurrently
// and are all attempted regardless of each other's outcome; failures are
// logged, never surfaced, and never retried here.
func (s *Store) Delete(ctx context.Context, user session.UserSnapshot, id string) error {
	rec, err := s.lookup(ctx, user.ID, id)
	if err != nil {
		return err
	}

	var paths []string

	err = s.DB.WithContext(ctx).
		Model(model.MailAttachment{}).
		Where("mail_id = ?", rec.ID).
		Pluck("storage_path", &paths).
		Error
	if err != nil {
		return fmt.Errorf("failed to collect attachment paths, %w", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mail_id = ?", rec.ID).Delete(model.MailLabel{}).Error; err != nil {
			return err
		}

		if err := tx.Where("mail_id = ?", rec.ID).Delete(model.MailAttachment{}).Error; err != nil {
			return err
		}

		return tx.Delete(model.MailRecord{}, rec.ID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete mail records, %w", err)
	}

	if rec.ContentRef != nil {
		paths = append(paths, *rec.ContentRef)
	}

	var wg sync.WaitGroup
	for _, p := range paths {
		if p == "" {
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			if err := s.Blob.Delete(ctx, path); err != nil {
				zap.L().Warn("Failed to delete blob object",
					zap.String("email_id", rec.EmailID),
					zap.String("path", path),
					zap.Error(err))
			}
		}(p)
	}
	wg.Wait()

	return nil
}
