package models

import (
	"time"

	"gorm.io/gorm"
)


type User struct {
	gorm.Model
	Name           string    `gorm:"column:name;size:255;not null" json:"name"`
	Email          string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role           string    `gorm:"column:role;size:50;not null;default:student" json:"role"`
	IsActive       bool      `gorm:"column:is_active;default:true" json:"is_active"`
	EmailVerified  bool      `gorm:"column:email_verified;default:false" json:"email_verified"`
	ProfileImage   string    `gorm:"column:profile_image;size:500" json:"profile_image"`
	Refresh        string    `gorm:"column:refresh_token;size:255" json:"-"`
	RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"-"`
	EmailVerificationCode string    `gorm:"size:6" json:"-"`
	VerificationExpiry    time.Time `json:"-"`
}


type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	Token     string    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}


// Roles recognised by the role policy checks.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)
