package models

import "gorm.io/gorm"

// AuthorProfile is an editorial author page, independent of platform users.
type AuthorProfile struct {
	gorm.Model
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Bio      string `gorm:"column:bio;type:text" json:"bio"`
	PhotoURL string `gorm:"column:photo_url;size:500" json:"photo_url"`
	Website  string `gorm:"column:website;size:500" json:"website"`
}
