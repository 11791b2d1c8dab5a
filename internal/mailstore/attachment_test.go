package mailstore

import (
	"context"
	"encoding/base64"
	"strconv"
	"testing"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"github.com/stretchr/testify/require"
)

func seedAttachment(t *testing.T, s *Store) model.MailAttachment {
	t.Helper()

	payload := base64.StdEncoding.EncodeToString([]byte("attachment payload"))

	rec, err := s.Create(context.Background(), owner, CreateMailRequest{
		Subject:     "With file",
		Sender:      "remy@example.com",
		Attachments: []AttachmentUpload{{Filename: "notes.txt", ContentType: "text/plain", Data: payload}},
	})
	require.NoError(t, err)

	var att model.MailAttachment
	require.NoError(t, s.DB.Where("mail_id = ?", rec.ID).First(&att).Error)

	return att
}

func TestAttachmentFetch(t *testing.T) {
	s := newTestStore(t)
	att := seedAttachment(t, s)

	got, err := s.Attachment(context.Background(), owner, strconv.Itoa(int(att.ID)), false)
	require.NoError(t, err)
	require.Equal(t, "notes.txt", got.Filename)
	require.Equal(t, "text/plain", got.ContentType)
	require.Equal(t, "attachment payload", string(got.Data))
}

func TestAttachmentOwnerCheck(t *testing.T) {
	s := newTestStore(t)
	att := seedAttachment(t, s)
	ctx := context.Background()

	other := session.UserSnapshot{ID: 2, Username: "juno"}

	_, err := s.Attachment(ctx, other, strconv.Itoa(int(att.ID)), false)
	require.ErrorIs(t, err, fail.ErrForbidden)

	// Admins bypass the owner check
	got, err := s.Attachment(ctx, other, strconv.Itoa(int(att.ID)), true)
	require.NoError(t, err)
	require.Equal(t, "notes.txt", got.Filename)
}

func TestAttachmentMissingRow(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Attachment(context.Background(), owner, "999", false)
	require.ErrorIs(t, err, fail.ErrNotFound)
}

func TestAttachmentNonNumericID(t *testing.T) {
	s := newTestStore(t)
	seedAttachment(t, s)

	// Rejected before the query; the id column is numeric and a string
	// bind against it breaks on postgres
	_, err := s.Attachment(context.Background(), owner, "notes.txt", false)
	require.ErrorIs(t, err, fail.ErrNotFound)
}

func TestAttachmentMissingBlob(t *testing.T) {
	s := newTestStore(t)
	att := seedAttachment(t, s)
	ctx := context.Background()

	require.NoError(t, s.Blob.Delete(ctx, att.StoragePath))

	// Unlike mail content, the payload is the whole point here
	_, err := s.Attachment(ctx, owner, strconv.Itoa(int(att.ID)), false)
	require.ErrorIs(t, err, fail.ErrNotFound)
}
