package models

import "time"

// OTP stores a bcrypt hash of a one-time signup code issued for an
// identifier. Delivery (email) happens outside this service.
type OTP struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Identifier string    `gorm:"size:200;not null;index"`
	CodeHash   []byte    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"index;not null"`
	Consumed   bool      `gorm:"default:false"`
}
