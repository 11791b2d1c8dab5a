package internal

import (
	"firemail/mail-api/internal/accounting"
	"firemail/mail-api/internal/backup"
	"firemail/mail-api/internal/blob"
	"firemail/mail-api/internal/kv"
	"firemail/mail-api/internal/mailstore"
	"firemail/mail-api/internal/session"
	"firemail/mail-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB   *gorm.DB
	Blob blob.Store
	KV   kv.Store

	Argon      *security.ArgonHash
	Sessions   *session.Ledger
	Policy     *session.Policy
	Mail       *mailstore.Store
	Accountant *accounting.Accountant
	Snapshots  *backup.Builder
	Registry   *backup.Registry
	Restorer   *backup.Restorer
}
