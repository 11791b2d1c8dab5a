// Package model defines database models
package model

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Email        *string `gorm:"uniqueIndex" json:"email"`
	DisplayName  string  `json:"display_name"`
	Avatar       string  `json:"avatar"`
	// 1 = active, 0 = disabled
	Status    int        `gorm:"default:1" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	LastLogin *time.Time `json:"last_login"`

	Mails []MailRecord `gorm:"foreignKey:UserID" json:"-"`
}
