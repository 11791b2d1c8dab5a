package accounting

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"firemail/mail-api/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestAccountant(t *testing.T) *Accountant {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stats.db")))
	require.NoError(t, err)

	err = db.AutoMigrate(
		model.User{},
		model.MailRecord{},
		model.MailLabel{},
		model.MailAttachment{},
	)
	require.NoError(t, err)

	return &Accountant{DB: db, BytesPerMail: 5000, StorageLimit: 10 << 30}
}

func seedUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()

	u := model.User{Username: username}
	require.NoError(t, db.Create(&u).Error)

	return u
}

var seedSeq int

func seedMail(t *testing.T, db *gorm.DB, userID uint, labels []string, attSizes []int64) model.MailRecord {
	t.Helper()

	seedSeq++
	rec := model.MailRecord{
		EmailID: fmt.Sprintf("email_%d_%d", userID, seedSeq),
		UserID:  userID,
		Subject: "seeded",
		Sender:  "seed@example.com",
	}
	require.NoError(t, db.Create(&rec).Error)

	for _, l := range labels {
		require.NoError(t, db.Create(&model.MailLabel{MailID: rec.ID, Label: l}).Error)
	}

	for i, size := range attSizes {
		require.NoError(t, db.Create(&model.MailAttachment{
			MailID:      rec.ID,
			Filename:    fmt.Sprintf("file%d.bin", i),
			Size:        size,
			StoragePath: fmt.Sprintf("attachments/%d/%s/file%d.bin", userID, rec.EmailID, i),
		}).Error)
	}

	return rec
}

func TestUserStats(t *testing.T) {
	a := newTestAccountant(t)

	u := seedUser(t, a.DB, "ayla")
	seedMail(t, a.DB, u.ID, []string{"work"}, []int64{100, 200})
	seedMail(t, a.DB, u.ID, []string{"work"}, nil)

	// Another tenant's usage must not bleed in
	other := seedUser(t, a.DB, "juno")
	seedMail(t, a.DB, other.ID, []string{"personal"}, []int64{9999})

	stats, err := a.UserStats(context.Background(), u.ID)
	require.NoError(t, err)

	require.Equal(t, int64(2), stats.Emails.Count)
	require.Equal(t, int64(2), stats.Attachments.Count)
	require.Equal(t, int64(300), stats.Attachments.Size)

	// Duplicate labels across mails count once
	require.Equal(t, int64(1), stats.Labels.Count)

	// 300 attachment bytes plus two mails at the flat per-mail rate
	require.Equal(t, int64(300+2*5000), stats.Storage.Used)
	require.Equal(t, int64(10)<<30, stats.Storage.Limit)
	require.Equal(t, "10 GB", stats.Storage.LimitFormatted)
}

func TestUserStatsEmptyTenant(t *testing.T) {
	a := newTestAccountant(t)

	u := seedUser(t, a.DB, "fresh")

	stats, err := a.UserStats(context.Background(), u.ID)
	require.NoError(t, err)
	require.Zero(t, stats.Emails.Count)
	require.Zero(t, stats.Attachments.Size)
	require.Zero(t, stats.Storage.Used)
	require.Equal(t, "0 Bytes", stats.Storage.UsedFormatted)
}

func TestSystemStats(t *testing.T) {
	a := newTestAccountant(t)

	ayla := seedUser(t, a.DB, "ayla")
	seedMail(t, a.DB, ayla.ID, nil, []int64{1000})

	juno := seedUser(t, a.DB, "juno")
	seedMail(t, a.DB, juno.ID, nil, nil)
	seedMail(t, a.DB, juno.ID, nil, nil)

	stats, err := a.SystemStats(context.Background())
	require.NoError(t, err)

	require.Equal(t, int64(2), stats.System.UsersCount)
	require.Equal(t, int64(3), stats.System.TotalEmails)
	require.Equal(t, int64(1), stats.System.TotalAttachments)
	require.Equal(t, int64(1000+3*5000), stats.System.TotalStorage)

	require.Len(t, stats.Users, 2)

	byName := map[string]UserUsage{}
	for _, u := range stats.Users {
		byName[u.Username] = u
	}

	require.Equal(t, int64(1), byName["ayla"].Stats.Emails)
	require.Equal(t, int64(1000+5000), byName["ayla"].Stats.StorageUsed)
	require.Equal(t, int64(2), byName["juno"].Stats.Emails)
	require.Equal(t, int64(2*5000), byName["juno"].Stats.StorageUsed)
}
