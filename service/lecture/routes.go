package lecture

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

type LectureHandler struct {
	db *gorm.DB
}

func NewLectureHandler(db *gorm.DB) *LectureHandler {
	return &LectureHandler{db: db}
}

func (h *LectureHandler) RegisterRoutes(router *mux.Router) {
	staff := []string{models.RoleAdmin, models.RoleTeacher}

	router.HandleFunc("/lectures", utils.AuthMiddleware(utils.RequireRole(h.db, h.CreateLecture, staff...))).Methods("POST")
	router.HandleFunc("/lectures", h.GetLectures).Methods("GET")
	router.HandleFunc("/lectures/{id}", h.GetLecture).Methods("GET")
	router.HandleFunc("/lectures/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateLecture, staff...))).Methods("PUT")
	router.HandleFunc("/lectures/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.DeleteLecture, staff...))).Methods("DELETE")

	router.HandleFunc("/lectures/{id}/complete", utils.AuthMiddleware(h.CompleteLecture)).Methods("POST")
	router.HandleFunc("/lectures/{id}/uncomplete", utils.AuthMiddleware(h.UncompleteLecture)).Methods("POST")
}

// CreateLecture creates a new lecture
func (h *LectureHandler) CreateLecture(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var createRequest struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		VideoURL    string   `json:"video_url"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Title == "" || createRequest.VideoURL == "" {
		http.Error(w, "Title and video_url are required", http.StatusBadRequest)
		return
	}

	lecture := models.Lecture{
		AuthorID:    userID,
		Title:       createRequest.Title,
		Description: createRequest.Description,
		VideoURL:    createRequest.VideoURL,
		Category:    createRequest.Category,
		Tags:        createRequest.Tags,
	}

	if err := h.db.Create(&lecture).Error; err != nil {
		http.Error(w, "Error creating lecture", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(lecture)
}

// GetLectures retrieves lectures with pagination
func (h *LectureHandler) GetLectures(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 12

	query := h.db.Model(&models.Lecture{}).Preload("Author")

	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}

	var total int64
	query.Count(&total)

	var lectures []models.Lecture
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&lectures).Error; err != nil {
		http.Error(w, "Error retrieving lectures", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"lectures":    lectures,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetLecture retrieves a lecture and counts a view
func (h *LectureHandler) GetLecture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	var lecture models.Lecture
	if err := h.db.Preload("Author").First(&lecture, lectureID).Error; err != nil {
		http.Error(w, "Lecture not found", http.StatusNotFound)
		return
	}

	h.db.Model(&models.Lecture{}).Where("id = ?", lectureID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	lecture.Views++

	if lecture.Author != nil {
		lecture.Author.ProfileImage = utils.AvatarOr(lecture.Author.ProfileImage, lecture.Author.Email)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lecture)
}

// UpdateLecture updates lecture fields
func (h *LectureHandler) UpdateLecture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		VideoURL    string   `json:"video_url"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var lecture models.Lecture
	if err := h.db.First(&lecture, lectureID).Error; err != nil {
		http.Error(w, "Lecture not found", http.StatusNotFound)
		return
	}

	if updateRequest.Title != "" {
		lecture.Title = updateRequest.Title
	}
	if updateRequest.Description != "" {
		lecture.Description = updateRequest.Description
	}
	if updateRequest.VideoURL != "" {
		lecture.VideoURL = updateRequest.VideoURL
	}
	if updateRequest.Category != "" {
		lecture.Category = updateRequest.Category
	}
	if updateRequest.Tags != nil {
		lecture.Tags = updateRequest.Tags
	}

	if err := h.db.Save(&lecture).Error; err != nil {
		http.Error(w, "Error updating lecture", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(lecture)
}

// DeleteLecture deletes a lecture and its completion records
func (h *LectureHandler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	var lecture models.Lecture
	if err := h.db.First(&lecture, lectureID).Error; err != nil {
		http.Error(w, "Lecture not found", http.StatusNotFound)
		return
	}

	tx := h.db.Begin()

	if err := tx.Where("lecture_id = ?", lectureID).Delete(&models.LectureCompletion{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting completions", http.StatusInternalServerError)
		return
	}

	if err := tx.Delete(&lecture).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting lecture", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Lecture deleted successfully",
	})
}

// CompleteLecture marks a lecture as watched by the caller
func (h *LectureHandler) CompleteLecture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var lecture models.Lecture
	if err := h.db.First(&lecture, lectureID).Error; err != nil {
		http.Error(w, "Lecture not found", http.StatusNotFound)
		return
	}

	var existing models.LectureCompletion
	if err := h.db.Where("lecture_id = ? AND user_id = ?", lectureID, userID).First(&existing).Error; err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Lecture marked as completed",
		})
		return
	}

	completion := models.LectureCompletion{
		LectureID: uint(lectureID),
		UserID:    userID,
	}
	if err := h.db.Create(&completion).Error; err != nil {
		http.Error(w, "Error marking lecture completed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Lecture marked as completed",
	})
}

// UncompleteLecture removes the caller's completion mark. Removing an
// absent mark is not an error.
func (h *LectureHandler) UncompleteLecture(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lectureID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.db.Where("lecture_id = ? AND user_id = ?", lectureID, userID).Delete(&models.LectureCompletion{}).Error; err != nil {
		http.Error(w, "Error removing completion", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Completion removed",
	})
}
