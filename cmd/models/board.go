package models

import "gorm.io/gorm"

// Post types on the board.
const (
	PostTypeFree       = "free"
	PostTypeAssignment = "assignment"
)

type Post struct {
	gorm.Model
	AuthorID      uint      `gorm:"column:author_id;not null" json:"author_id"`
	Title         string    `gorm:"column:title;size:255;not null" json:"title"`
	Content       string    `gorm:"column:content;type:text;not null" json:"content"`
	Type          string    `gorm:"column:type;size:50;not null;default:free" json:"type"`
	Category      string    `gorm:"column:category;size:100" json:"category"`
	IsPinned      bool      `gorm:"column:is_pinned;default:false" json:"is_pinned"`
	Views         int       `gorm:"column:views;default:0" json:"views"`
	LikesCount    int       `gorm:"column:likes_count;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"column:comments_count;default:0" json:"comments_count"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments      []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes         []PostLike `gorm:"foreignKey:PostID" json:"likes,omitempty"`
}

// Comment attaches to either a board post or an assignment submission,
// never both.
type Comment struct {
	gorm.Model
	PostID       *uint  `gorm:"column:post_id;index" json:"post_id,omitempty"`
	SubmissionID *uint  `gorm:"column:submission_id;index" json:"submission_id,omitempty"`
	AuthorID     uint   `gorm:"column:author_id;not null" json:"author_id"`
	Content      string `gorm:"column:content;type:text;not null" json:"content"`
	LikesCount   int    `gorm:"column:likes_count;default:0" json:"likes_count"`
	Author       *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

type PostLike struct {
	gorm.Model
	UserID uint `gorm:"column:user_id;not null" json:"user_id"`
	PostID uint `gorm:"column:post_id;not null" json:"post_id"`
}

type Bookmark struct {
	gorm.Model
	UserID uint `gorm:"column:user_id;not null" json:"user_id"`
	PostID uint `gorm:"column:post_id;not null" json:"post_id"`
}

// Report statuses an admin can move a report to.
var ReportStatuses = map[string]bool{
	"pending":  true,
	"reviewed": true,
	"resolved": true,
	"rejected": true,
}

type Report struct {
	gorm.Model
	PostID uint   `gorm:"column:post_id;not null" json:"post_id"`
	UserID uint   `gorm:"column:user_id;not null" json:"user_id"`
	Reason string `gorm:"column:reason;type:text;not null" json:"reason"`
	Status string `gorm:"column:status;size:50;not null;default:pending" json:"status"`
	Post   *Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
