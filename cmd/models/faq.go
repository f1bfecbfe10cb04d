package models

import "gorm.io/gorm"

type FAQ struct {
	gorm.Model
	Question string `gorm:"column:question;type:text;not null" json:"question"`
	Answer   string `gorm:"column:answer;type:text;not null" json:"answer"`
	Category string `gorm:"column:category;size:100" json:"category"`
	Position int    `gorm:"column:position;default:0" json:"position"`
}
