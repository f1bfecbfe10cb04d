package models

import "gorm.io/gorm"

// SiteSetting is a single-row table; the admin service creates the row
// on first read.
type SiteSetting struct {
	gorm.Model
	SiteName    string `gorm:"column:site_name;size:255" json:"site_name"`
	Intro       string `gorm:"column:intro;type:text" json:"intro"`
	BannerURL   string `gorm:"column:banner_url;size:500" json:"banner_url"`
	AllowSignup bool   `gorm:"column:allow_signup;default:true" json:"allow_signup"`
}
