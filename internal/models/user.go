// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"size:100;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(10);default:'USER'"`
	IsVerified   bool     `json:"is_verified" gorm:"default:false"`

	// Email verification and password reset are single-token, single-use:
	// each slot holds at most one outstanding code and is cleared on success.
	VerificationToken          *string    `json:"-" gorm:"size:64;index"`
	VerificationTokenExpiresAt *time.Time `json:"-"`
	PasswordResetToken         *string    `json:"-" gorm:"size:64;index"`
	PasswordResetTokenExpires  *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`

	// Relationships
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty" gorm:"foreignKey:UserID"`
	Products        []Product        `json:"products,omitempty" gorm:"foreignKey:UserID"`
	Orders          []Order          `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// One shipping address per user; checkout refuses users without one.
type ShippingAddress struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Address    string    `json:"address" gorm:"size:255;not null"`
	State      string    `json:"state" gorm:"size:100;not null"`
	PostalCode string    `json:"postal_code" gorm:"size:20;not null"`
	Country    string    `json:"country" gorm:"size:100;not null"`
}
