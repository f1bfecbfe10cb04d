package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Lecture struct {
	gorm.Model
	AuthorID    uint   `gorm:"column:author_id;not null" json:"author_id"`
	Title       string `gorm:"column:title;size:255;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	VideoURL    string `gorm:"column:video_url;size:500;not null" json:"video_url"`
	Category    string `gorm:"column:category;size:100" json:"category"`

	Tags pq.StringArray `gorm:"type:text[];column:tags" json:"tags,omitempty"`

	Views  int   `gorm:"column:views;default:0" json:"views"`
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// LectureCompletion marks a lecture as watched by a user.
type LectureCompletion struct {
	gorm.Model
	LectureID uint `gorm:"column:lecture_id;not null;index" json:"lecture_id"`
	UserID    uint `gorm:"column:user_id;not null;index" json:"user_id"`
}
