// Package db opens the relational metadata store
package db

import (
	"fmt"

	"firemail/mail-api/internal/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch viper.GetString("database.driver") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("database.dsn"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("database.dsn"))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", viper.GetString("database.driver"))
	}

	db, err := gorm.Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(
		model.User{},
		model.MailRecord{},
		model.MailLabel{},
		model.MailAttachment{},
		model.SystemConfig{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
