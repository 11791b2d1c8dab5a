package mailstore

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mail.db")))
	require.NoError(t, err)

	err = db.AutoMigrate(
		model.User{},
		model.MailRecord{},
		model.MailLabel{},
		model.MailAttachment{},
	)
	require.NoError(t, err)

	bs, err := blob.NewDisk(t.TempDir())
	require.NoError(t, err)

	return New(db, bs)
}

var owner = session.UserSnapshot{ID: 1, Username: "ayla"}

func TestCreateWritesContentBlobFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{
		Subject: "Quarterly report",
		Sender:  "remy@example.com",
		Content: []byte(`{"body":"see attached"}`),
	})
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	require.NotEmpty(t, rec.EmailID)
	require.NotNil(t, rec.ContentRef)

	// The index row must never reference a missing object
	data, ok, err := s.Blob.Get(ctx, *rec.ContentRef)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"body":"see attached"}`, string(data))

	require.Equal(t, "inbox", rec.Folder)
}

func TestCreateRejectsMissingSubject(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(context.Background(), owner, CreateMailRequest{Sender: "a@b.c"})
	require.ErrorIs(t, err, fail.ErrInvalidInput)
}

func TestCreateWithAttachmentsAndLabels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	payload := base64.StdEncoding.EncodeToString([]byte("pdf bytes here"))

	rec, err := s.Create(ctx, owner, CreateMailRequest{
		Subject: "Invoice",
		Sender:  "billing@example.com",
		Attachments: []AttachmentUpload{
			{Filename: "invoice.pdf", ContentType: "application/pdf", Data: payload},
			{Filename: "broken.bin", Data: "%%% not base64 %%%"},
		},
		Labels: []string{"finance", "important"},
	})
	require.NoError(t, err)
	require.True(t, rec.HasAttachment)

	var atts []model.MailAttachment
	require.NoError(t, s.DB.Where("mail_id = ?", rec.ID).Find(&atts).Error)

	// The malformed attachment is skipped, not fatal
	require.Len(t, atts, 1)
	require.Equal(t, "invoice.pdf", atts[0].Filename)
	require.Equal(t, int64(len("pdf bytes here")), atts[0].Size)

	data, ok, err := s.Blob.Get(ctx, atts[0].StoragePath)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "pdf bytes here", string(data))

	var labels []string
	require.NoError(t, s.DB.Model(model.MailLabel{}).Where("mail_id = ?", rec.ID).Pluck("label", &labels).Error)
	require.ElementsMatch(t, []string{"finance", "important"}, labels)
}

func TestGetMarksRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{
		Subject: "Hello",
		Sender:  "remy@example.com",
		Labels:  []string{"inbox-zero"},
	})
	require.NoError(t, err)
	require.False(t, rec.IsRead)

	m, err := s.Get(ctx, owner, rec.EmailID)
	require.NoError(t, err)
	require.True(t, m.IsRead)
	require.Equal(t, []string{"inbox-zero"}, m.Labels)

	var fresh model.MailRecord
	require.NoError(t, s.DB.First(&fresh, rec.ID).Error)
	require.True(t, fresh.IsRead)
}

func TestGetToleratesMissingContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{
		Subject: "Vanishing act",
		Sender:  "remy@example.com",
		Content: []byte(`{"body":"soon gone"}`),
	})
	require.NoError(t, err)

	require.NoError(t, s.Blob.Delete(ctx, *rec.ContentRef))

	m, err := s.Get(ctx, owner, rec.EmailID)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(m.Content))
}

func TestLookupByRowIDOrEmailID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Dual id", Sender: "a@b.c"})
	require.NoError(t, err)

	byEmailID, err := s.Get(ctx, owner, rec.EmailID)
	require.NoError(t, err)

	byRowID, err := s.Get(ctx, owner, "1")
	require.NoError(t, err)

	require.Equal(t, byEmailID.EmailID, byRowID.EmailID)
}

func TestLookupNonNumericIDMatchesEmailIDOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Typed id", Sender: "a@b.c"})
	require.NoError(t, err)

	// A non-numeric id never reaches the integer row-id column; it either
	// matches an email id or nothing at all
	got, err := s.Get(ctx, owner, rec.EmailID)
	require.NoError(t, err)
	require.Equal(t, rec.EmailID, got.EmailID)

	_, err = s.Get(ctx, owner, "email_0_nonexistent")
	require.ErrorIs(t, err, fail.ErrNotFound)

	err = s.Delete(ctx, owner, "not-an-id-at-all")
	require.ErrorIs(t, err, fail.ErrNotFound)
}

func TestGetScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, owner, CreateMailRequest{Subject: "Private", Sender: "a@b.c"})
	require.NoError(t, err)

	other := session.UserSnapshot{ID: 2, Username: "juno"}

	// Someone else's mail looks exactly like a missing one
	_, err = s.Get(ctx, other, rec.EmailID)
	require.ErrorIs(t, err, fail.ErrNotFound)
}

func TestDeleteRemovesRowsAndBlobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	payload := base64.StdEncoding.EncodeToString([]byte("attachment bytes"))

	rec, err := s.Create(ctx, owner, CreateMailRequest{
		Subject:     "Doomed",
		Sender:      "remy@example.com",
		Content:     []byte(`{"body":"bye"}`),
		Attachments: []AttachmentUpload{{Filename: "a.txt", Data: payload}},
		Labels:      []string{"trash-soon"},
	})
	require.NoError(t, err)

	var att model.MailAttachment
	require.NoError(t, s.DB.Where("mail_id = ?", rec.ID).First(&att).Error)

	require.NoError(t, s.Delete(ctx, owner, rec.EmailID))

	_, err = s.Get(ctx, owner, rec.EmailID)
	require.ErrorIs(t, err, fail.ErrNotFound)

	var labelCount, attCount int64
	require.NoError(t, s.DB.Model(model.MailLabel{}).Where("mail_id = ?", rec.ID).Count(&labelCount).Error)
	require.NoError(t, s.DB.Model(model.MailAttachment{}).Where("mail_id = ?", rec.ID).Count(&attCount).Error)
	require.Zero(t, labelCount)
	require.Zero(t, attCount)

	_, ok, err := s.Blob.Get(ctx, *rec.ContentRef)
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = s.Blob.Get(ctx, att.StoragePath)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteUnknownMail(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete(context.Background(), owner, "email_123_missing")
	require.ErrorIs(t, err, fail.ErrNotFound)
}

func TestCreateUsesInjectedClock(t *testing.T) {
	s := newTestStore(t)

	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	s.Now = func() time.Time { return fixed }

	rec, err := s.Create(context.Background(), owner, CreateMailRequest{Subject: "Clock", Sender: "a@b.c"})
	require.NoError(t, err)
	require.Equal(t, fixed, rec.ReceivedTime.UTC())
	require.Contains(t, rec.EmailID, "email_1740821400000_")
}
