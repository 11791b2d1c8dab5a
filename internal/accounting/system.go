package accounting

import (
	"context"
	"fmt"
	"time"

	"firemail/mail-api/internal/model"
	"firemail/mail-api/pkg/util"
)

type UserUsage struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
	Stats     UsageTotal `json:"stats"`
}

type UsageTotal struct {
	Emails               int64  `json:"emails"`
	Attachments          int64  `json:"attachments"`
	StorageUsed          int64  `json:"storage_used"`
	StorageUsedFormatted string `json:"storage_used_formatted"`
}

type SystemTotals struct {
	UsersCount            int64     `json:"users_count"`
	TotalEmails           int64     `json:"total_emails"`
	TotalAttachments      int64     `json:"total_attachments"`
	TotalStorage          int64     `json:"total_storage"`
	TotalStorageFormatted string    `json:"total_storage_formatted"`
	Updated               time.Time `json:"updated"`
}

type SystemStats struct {
	Users  []UserUsage  `json:"users"`
	System SystemTotals `json:"system"`
}

type userGroup struct {
	UserID uint
	Count  int64
	Size   int64
}

// SystemStats is the privileged, all-tenants version of UserStats: the same
// per-user estimate, grouped by user id and summed.
func (a *Accountant) SystemStats(ctx context.Context) (*SystemStats, error) {
	var users []model.User
	if err := a.DB.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users, %w", err)
	}

	var mailGroups []userGroup

	err := a.DB.WithContext(ctx).
		Model(model.MailRecord{}).
		Select("user_id, COUNT(*) AS count").
		Group("user_id").
		Scan(&mailGroups).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to group mail counts, %w", err)
	}

	mailByUser := make(map[uint]int64, len(mailGroups))
	for _, g := range mailGroups {
		mailByUser[g.UserID] = g.Count
	}

	var attGroups []userGroup

	err = a.DB.WithContext(ctx).
		Model(model.MailAttachment{}).
		Select("mail_records.user_id AS user_id, COUNT(mail_attachments.id) AS count, COALESCE(SUM(mail_attachments.size), 0) AS size").
		Joins("JOIN mail_records ON mail_records.id = mail_attachments.mail_id").
		Group("mail_records.user_id").
		Scan(&attGroups).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to group attachment usage, %w", err)
	}

	attByUser := make(map[uint]userGroup, len(attGroups))
	for _, g := range attGroups {
		attByUser[g.UserID] = g
	}

	out := &SystemStats{Users: make([]UserUsage, 0, len(users))}

	for _, u := range users {
		mails := mailByUser[u.ID]
		atts := attByUser[u.ID]
		used := atts.Size + mails*a.BytesPerMail

		out.Users = append(out.Users, UserUsage{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
			Stats: UsageTotal{
				Emails:               mails,
				Attachments:          atts.Count,
				StorageUsed:          used,
				StorageUsedFormatted: util.FormatBytes(used),
			},
		})

		out.System.TotalEmails += mails
		out.System.TotalAttachments += atts.Count
		out.System.TotalStorage += used
	}

	out.System.UsersCount = int64(len(users))
	out.System.TotalStorageFormatted = util.FormatBytes(out.System.TotalStorage)
	out.System.Updated = time.Now()

	return out, nil
}
