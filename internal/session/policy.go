package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"firemail/mail-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminUsersKey = "admin_users"

// Policy answers the single authorization question the core needs: may this
// identity act on privileged operations. The admin list lives in the
// system_configs table as a JSON array of user ids or usernames.
type Policy struct {
	DB *gorm.DB
}

// IsAdmin re-reads the config row on every call so admin changes apply
// without re-login. Lookup errors are treated as not-admin.
func (p *Policy) IsAdmin(ctx context.Context, user UserSnapshot) bool {
	var cfg model.SystemConfig

	err := p.DB.WithContext(ctx).
		Where("config_key = ?", adminUsersKey).
		First(&cfg).
		Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Error("Failed to load admin list", zap.Error(err))
			return false
		}

		// No admin list configured: the first user is the admin
		return user.ID == 1
	}

	var admins []json.RawMessage
	if err := json.Unmarshal([]byte(cfg.ConfigValue), &admins); err != nil {
		zap.L().Error("Malformed admin list config", zap.Error(err))
		return false
	}

	for _, raw := range admins {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			if name == user.Username || name == strconv.FormatUint(uint64(user.ID), 10) {
				return true
			}
			continue
		}

		var id uint
		if json.Unmarshal(raw, &id) == nil && id == user.ID {
			return true
		}
	}

	return false
}
