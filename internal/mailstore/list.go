package mailstore

import (
	"context"
	"fmt"

	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"gorm.io/gorm"
)

type Page struct {
	Results    []model.MailRecord `json:"results"`
	Pagination Pagination         `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// List returns one page of a user's mail, newest received first, filtered
// by folder, label and a subject/sender/recipient substring search.
func (s *Store) List(ctx context.Context, user session.UserSnapshot, req ListMailRequest) (*Page, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	base := func() *gorm.DB {
		q := s.DB.WithContext(ctx).
			Model(model.MailRecord{}).
			Where("mail_records.user_id = ?", user.ID)

		if req.Label != "" {
			q = q.Joins("JOIN mail_labels ON mail_labels.mail_id = mail_records.id").
				Where("mail_labels.label = ?", req.Label)
		}

		if req.Folder != "" {
			q = q.Where("mail_records.folder = ?", req.Folder)
		}

		if req.Search != "" {
			pattern := "%" + req.Search + "%"
			q = q.Where("mail_records.subject LIKE ? OR mail_records.sender LIKE ? OR mail_records.recipient LIKE ?",
				pattern, pattern, pattern)
		}

		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count mail, %w", err)
	}

	page := &Page{
		Results: []model.MailRecord{},
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: (total + int64(req.Limit) - 1) / int64(req.Limit),
		},
	}

	err := base().
		Order("mail_records.received_time DESC").
		Limit(req.Limit).
		Offset((req.Page - 1) * req.Limit).
		Find(&page.Results).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mail, %w", err)
	}

	return page, nil
}
