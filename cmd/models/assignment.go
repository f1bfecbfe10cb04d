package models

import (
	"time"

	"gorm.io/gorm"
)

// Assignment extends a board post of type "assignment" 1:1.
type Assignment struct {
	gorm.Model
	PostID             uint      `gorm:"column:post_id;not null;uniqueIndex" json:"post_id"`
	DueDate            time.Time `gorm:"column:due_date" json:"due_date"`
	MaxSubmissions     int       `gorm:"column:max_submissions;not null" json:"max_submissions"`
	CurrentSubmissions int       `gorm:"column:current_submissions;default:0" json:"current_submissions"`
	IsCompleted        bool      `gorm:"column:is_completed;default:false" json:"is_completed"`
	Post               *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

type Submission struct {
	gorm.Model
	AssignmentID uint   `gorm:"column:assignment_id;not null;index" json:"assignment_id"`
	StudentID    uint   `gorm:"column:student_id;not null;index" json:"student_id"`
	FileURL      string `gorm:"column:file_url;size:500" json:"file_url"`
	IsChecked    bool   `gorm:"column:is_checked;default:false" json:"is_checked"`
	CheckedBy    uint   `gorm:"column:checked_by" json:"checked_by,omitempty"`
	Feedback     string `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	Student      *User  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
