package models

import (
	"time"

	"gorm.io/gorm"
)

type Book struct {
	gorm.Model
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Author      string    `gorm:"column:author;size:255;not null" json:"author"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;size:100" json:"category"`
	CoverURL    string    `gorm:"column:cover_url;size:500" json:"cover_url"`
	Link        string    `gorm:"column:link;size:500" json:"link"`
	PublishedAt time.Time `gorm:"column:published_at" json:"published_at"`
}
