package board

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

type PostHandler struct {
	db *gorm.DB
}

func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

func (h *PostHandler) RegisterRoutes(router *mux.Router) {
	// Post routes
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts", h.GetPosts).Methods("GET")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.UpdatePost)).Methods("PUT")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/pin", utils.AuthMiddleware(utils.RequireRole(h.db, h.PinPost, models.RoleAdmin))).Methods("POST")
	router.HandleFunc("/posts/{id}/unpin", utils.AuthMiddleware(utils.RequireRole(h.db, h.UnpinPost, models.RoleAdmin))).Methods("POST")

	// Like routes
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.LikePost)).Methods("POST")
	router.HandleFunc("/posts/{id}/unlike", utils.AuthMiddleware(h.UnlikePost)).Methods("POST")

	// Bookmark routes
	router.HandleFunc("/posts/{id}/bookmark", utils.AuthMiddleware(h.AddBookmark)).Methods("POST")
	router.HandleFunc("/posts/{id}/bookmark", utils.AuthMiddleware(h.RemoveBookmark)).Methods("DELETE")
	router.HandleFunc("/bookmarks", utils.AuthMiddleware(h.GetBookmarks)).Methods("GET")

	// Comment routes
	router.HandleFunc("/posts/{id}/comments", utils.AuthMiddleware(h.AddComment)).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", h.GetComments).Methods("GET")
	router.HandleFunc("/posts/{id}/comments/{commentId}", utils.AuthMiddleware(h.UpdateComment)).Methods("PUT")
	router.HandleFunc("/posts/{id}/comments/{commentId}", utils.AuthMiddleware(h.DeleteComment)).Methods("DELETE")

	// Report routes
	router.HandleFunc("/posts/{id}/report", utils.AuthMiddleware(h.ReportPost)).Methods("POST")
}

func (h *PostHandler) isAdmin(userID uint) bool {
	var role string
	if err := h.db.Model(&models.User{}).Select("role").Where("id = ?", userID).Take(&role).Error; err != nil {
		return false
	}
	return role == models.RoleAdmin
}

// CreatePost creates a new board post
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var createRequest struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Type     string `json:"type"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Title == "" || createRequest.Content == "" {
		http.Error(w, "Title and content are required", http.StatusBadRequest)
		return
	}

	postType := createRequest.Type
	if postType == "" {
		postType = models.PostTypeFree
	}
	if postType != models.PostTypeFree && postType != models.PostTypeAssignment {
		http.Error(w, "Invalid post type", http.StatusBadRequest)
		return
	}

	post := models.Post{
		AuthorID: userID,
		Title:    createRequest.Title,
		Content:  utils.Sanitize(createRequest.Content),
		Type:     postType,
		Category: createRequest.Category,
	}

	if err := h.db.Create(&post).Error; err != nil {
		http.Error(w, "Error creating post", http.StatusInternalServerError)
		return
	}

	h.db.Preload("Author").First(&post, post.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

// GetPosts retrieves posts with pagination, pinned posts first
func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 10

	query := h.db.Model(&models.Post{}).Preload("Author")

	if postType := r.URL.Query().Get("type"); postType != "" {
		query = query.Where("type = ?", postType)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var posts []models.Post
	if err := query.Order("is_pinned DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		http.Error(w, "Error retrieving posts", http.StatusInternalServerError)
		return
	}

	for i := range posts {
		if posts[i].Author != nil {
			posts[i].Author.ProfileImage = utils.AvatarOr(posts[i].Author.ProfileImage, posts[i].Author.Email)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts":       posts,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetPost retrieves a post with its author and comments and counts a view
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := h.db.Preload("Author").Preload("Comments.Author").First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	h.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	post.Views++

	if post.Author != nil {
		post.Author.ProfileImage = utils.AvatarOr(post.Author.ProfileImage, post.Author.Email)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// UpdatePost updates a post's content (owner or admin)
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var updateData struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	if post.AuthorID != userID && !h.isAdmin(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if updateData.Title != "" {
		post.Title = updateData.Title
	}
	if updateData.Content != "" {
		post.Content = utils.Sanitize(updateData.Content)
	}
	if updateData.Category != "" {
		post.Category = updateData.Category
	}

	if err := h.db.Save(&post).Error; err != nil {
		http.Error(w, "Error updating post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// DeletePost deletes a post and its likes, comments, bookmarks and reports
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	if post.AuthorID != userID && !h.isAdmin(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	tx := h.db.Begin()

	if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting likes", http.StatusInternalServerError)
		return
	}

	if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting comments", http.StatusInternalServerError)
		return
	}

	if err := tx.Where("post_id = ?", postID).Delete(&models.Bookmark{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting bookmarks", http.StatusInternalServerError)
		return
	}

	if err := tx.Where("post_id = ?", postID).Delete(&models.Report{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting reports", http.StatusInternalServerError)
		return
	}

	if err := tx.Delete(&post).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting post", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post deleted successfully",
	})
}

// PinPost pins a post to the top of the board (admin only)
func (h *PostHandler) PinPost(w http.ResponseWriter, r *http.Request) {
	h.setPinned(w, r, true)
}

// UnpinPost removes the pin from a post (admin only)
func (h *PostHandler) UnpinPost(w http.ResponseWriter, r *http.Request) {
	h.setPinned(w, r, false)
}

func (h *PostHandler) setPinned(w http.ResponseWriter, r *http.Request, pinned bool) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	post.IsPinned = pinned
	if err := h.db.Save(&post).Error; err != nil {
		http.Error(w, "Error updating post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Post updated",
		"is_pinned": post.IsPinned,
	})
}

// LikePost handles liking a post
func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	tx := h.db.Begin()

	var existingLike models.PostLike
	if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existingLike).Error; err == nil {
		tx.Rollback()
		http.Error(w, "Post already liked", http.StatusConflict)
		return
	}

	like := models.PostLike{
		UserID: userID,
		PostID: uint(postID),
	}

	if err := tx.Create(&like).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error liking post", http.StatusInternalServerError)
		return
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating likes count", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post liked successfully",
	})
}

// UnlikePost removes a like from a post. Repeating the call after the
// like is gone succeeds without touching the counter.
func (h *PostHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tx := h.db.Begin()

	result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
	if result.Error != nil {
		tx.Rollback()
		http.Error(w, "Error unliking post", http.StatusInternalServerError)
		return
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Post unliked successfully",
		})
		return
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating likes count", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post unliked successfully",
	})
}

// AddBookmark bookmarks a post for the caller
func (h *PostHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	var existing models.Bookmark
	if err := h.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error; err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Post bookmarked",
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Error adding bookmark", http.StatusInternalServerError)
		return
	}

	bookmark := models.Bookmark{
		UserID: userID,
		PostID: uint(postID),
	}
	if err := h.db.Create(&bookmark).Error; err != nil {
		http.Error(w, "Error adding bookmark", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Post bookmarked",
	})
}

// RemoveBookmark removes a bookmark. Removing an absent bookmark is not
// an error.
func (h *PostHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{}).Error; err != nil {
		http.Error(w, "Error removing bookmark", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Bookmark removed",
	})
}

// GetBookmarks lists the caller's bookmarked posts
func (h *PostHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var bookmarks []models.Bookmark
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bookmarks).Error; err != nil {
		http.Error(w, "Error retrieving bookmarks", http.StatusInternalServerError)
		return
	}

	postIDs := make([]uint, 0, len(bookmarks))
	for _, b := range bookmarks {
		postIDs = append(postIDs, b.PostID)
	}

	var posts []models.Post
	if len(postIDs) > 0 {
		if err := h.db.Preload("Author").Where("id IN ?", postIDs).Find(&posts).Error; err != nil {
			http.Error(w, "Error retrieving bookmarked posts", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts": posts,
		"total": len(posts),
	})
}

// AddComment adds a comment to a post and bumps its comment counter
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var commentRequest struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&commentRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if commentRequest.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	tx := h.db.Begin()

	pid := uint(postID)
	comment := models.Comment{
		PostID:   &pid,
		AuthorID: userID,
		Content:  utils.Sanitize(commentRequest.Content),
	}

	if err := tx.Create(&comment).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating comment", http.StatusInternalServerError)
		return
	}

	if err := tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating comments count", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	h.db.Preload("Author").First(&comment, comment.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}

// GetComments retrieves comments for a post with pagination
func (h *PostHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 10

	var comments []models.Comment
	var total int64

	query := h.db.Model(&models.Comment{}).Where("post_id = ?", postID).Preload("Author")
	query.Count(&total)

	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at ASC").Find(&comments).Error; err != nil {
		http.Error(w, "Error retrieving comments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"comments":    comments,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// UpdateComment updates a comment (owner only)
func (h *PostHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	commentID, err := strconv.ParseUint(vars["commentId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var updateData struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if updateData.Content == "" {
		http.Error(w, "Content is required", http.StatusBadRequest)
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	if comment.PostID == nil || *comment.PostID != uint(postID) {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	if comment.AuthorID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	comment.Content = utils.Sanitize(updateData.Content)
	if err := h.db.Save(&comment).Error; err != nil {
		http.Error(w, "Error updating comment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comment)
}

// DeleteComment deletes a comment (owner or admin) and decrements the
// parent post's counter
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	commentID, err := strconv.ParseUint(vars["commentId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	if comment.PostID == nil || *comment.PostID != uint(postID) {
		http.Error(w, "Comment not found", http.StatusNotFound)
		return
	}

	if comment.AuthorID != userID && !h.isAdmin(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	tx := h.db.Begin()

	result := tx.Delete(&comment)
	if result.Error != nil {
		tx.Rollback()
		http.Error(w, "Error deleting comment", http.StatusInternalServerError)
		return
	}

	if result.RowsAffected > 0 && comment.PostID != nil {
		if err := tx.Model(&models.Post{}).Where("id = ?", *comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", 1)).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error updating comments count", http.StatusInternalServerError)
			return
		}
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Comment deleted successfully",
	})
}

// ReportPost files a moderation report against a post
func (h *PostHandler) ReportPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var reportRequest struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reportRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if reportRequest.Reason == "" {
		http.Error(w, "Reason is required", http.StatusBadRequest)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	report := models.Report{
		PostID: uint(postID),
		UserID: userID,
		Reason: reportRequest.Reason,
		Status: "pending",
	}

	if err := h.db.Create(&report).Error; err != nil {
		http.Error(w, "Error creating report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}
