package assignment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
	"github.com/jaehong-dev/eduhub-server/storage"
)

type AssignmentHandler struct {
	db    *gorm.DB
	store *storage.B2Storage
}

// NewAssignmentHandler takes the bucket storage for submission file
// cleanup; nil means submission files live on local disk.
func NewAssignmentHandler(db *gorm.DB, store *storage.B2Storage) *AssignmentHandler {
	return &AssignmentHandler{db: db, store: store}
}

func (h *AssignmentHandler) RegisterRoutes(router *mux.Router) {
	staff := []string{models.RoleAdmin, models.RoleTeacher}

	router.HandleFunc("/assignments", utils.AuthMiddleware(utils.RequireRole(h.db, h.CreateAssignment, staff...))).Methods("POST")
	router.HandleFunc("/assignments", h.GetAssignments).Methods("GET")
	router.HandleFunc("/assignments/{id}", h.GetAssignment).Methods("GET")
	router.HandleFunc("/assignments/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateAssignment, staff...))).Methods("PUT")
	router.HandleFunc("/assignments/{id}/complete", utils.AuthMiddleware(utils.RequireRole(h.db, h.SetCompleted, staff...))).Methods("POST")

	router.HandleFunc("/assignments/{id}/submissions", utils.AuthMiddleware(h.CreateSubmission)).Methods("POST")
	router.HandleFunc("/assignments/{id}/submissions", utils.AuthMiddleware(utils.RequireRole(h.db, h.GetSubmissions, staff...))).Methods("GET")
	router.HandleFunc("/submissions/{id}/check", utils.AuthMiddleware(utils.RequireRole(h.db, h.CheckSubmission, staff...))).Methods("PUT")
	router.HandleFunc("/submissions/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.DeleteSubmission, models.RoleAdmin))).Methods("DELETE")
}

// CreateAssignment creates the board post and its assignment extension
// in one transaction
func (h *AssignmentHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var createRequest struct {
		Title          string `json:"title"`
		Content        string `json:"content"`
		Category       string `json:"category"`
		DueDate        string `json:"due_date"`
		MaxSubmissions int    `json:"max_submissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Title == "" || createRequest.Content == "" {
		http.Error(w, "Title and content are required", http.StatusBadRequest)
		return
	}
	if createRequest.MaxSubmissions <= 0 {
		http.Error(w, "max_submissions must be positive", http.StatusBadRequest)
		return
	}

	dueDate, err := time.Parse(time.RFC3339, createRequest.DueDate)
	if err != nil {
		http.Error(w, "Invalid due_date, expected RFC3339", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	post := models.Post{
		AuthorID: userID,
		Title:    createRequest.Title,
		Content:  utils.Sanitize(createRequest.Content),
		Type:     models.PostTypeAssignment,
		Category: createRequest.Category,
	}
	if err := tx.Create(&post).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating assignment post", http.StatusInternalServerError)
		return
	}

	assignment := models.Assignment{
		PostID:         post.ID,
		DueDate:        dueDate,
		MaxSubmissions: createRequest.MaxSubmissions,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating assignment", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error saving assignment", http.StatusInternalServerError)
		return
	}

	h.db.Preload("Post.Author").First(&assignment, assignment.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(assignment)
}

// GetAssignments retrieves assignments with pagination
func (h *AssignmentHandler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 10

	query := h.db.Model(&models.Assignment{}).Preload("Post.Author")

	if completed := r.URL.Query().Get("completed"); completed != "" {
		isCompleted, parseErr := strconv.ParseBool(completed)
		if parseErr != nil {
			http.Error(w, "Invalid value for 'completed'", http.StatusBadRequest)
			return
		}
		query = query.Where("is_completed = ?", isCompleted)
	}

	if dueBefore := r.URL.Query().Get("due_before"); dueBefore != "" {
		t, parseErr := time.Parse(time.RFC3339, dueBefore)
		if parseErr != nil {
			http.Error(w, "Invalid value for 'due_before'", http.StatusBadRequest)
			return
		}
		query = query.Where("due_date < ?", t)
	}

	var total int64
	query.Count(&total)

	var assignments []models.Assignment
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("due_date ASC").Find(&assignments).Error; err != nil {
		http.Error(w, "Error retrieving assignments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"assignments": assignments,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetAssignment retrieves one assignment with its post
func (h *AssignmentHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	var assignment models.Assignment
	if err := h.db.Preload("Post.Author").First(&assignment, assignmentID).Error; err != nil {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

// UpdateAssignment updates due date and submission cap
func (h *AssignmentHandler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		DueDate        string `json:"due_date"`
		MaxSubmissions int    `json:"max_submissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var assignment models.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	if updateRequest.DueDate != "" {
		dueDate, parseErr := time.Parse(time.RFC3339, updateRequest.DueDate)
		if parseErr != nil {
			http.Error(w, "Invalid due_date, expected RFC3339", http.StatusBadRequest)
			return
		}
		assignment.DueDate = dueDate
	}
	if updateRequest.MaxSubmissions > 0 {
		assignment.MaxSubmissions = updateRequest.MaxSubmissions
	}

	if err := h.db.Save(&assignment).Error; err != nil {
		http.Error(w, "Error updating assignment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(assignment)
}

// SetCompleted toggles the assignment's completed flag
func (h *AssignmentHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	var completeRequest struct {
		IsCompleted bool `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&completeRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var assignment models.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	assignment.IsCompleted = completeRequest.IsCompleted
	if err := h.db.Save(&assignment).Error; err != nil {
		http.Error(w, "Error updating assignment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Assignment updated",
		"is_completed": assignment.IsCompleted,
	})
}

// CreateSubmission submits a file for an assignment. The capacity and
// duplicate checks and the counter bump share one transaction.
func (h *AssignmentHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var submitRequest struct {
		FileURL string `json:"file_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&submitRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if submitRequest.FileURL == "" {
		http.Error(w, "file_url is required", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	var assignment models.Assignment
	if err := tx.First(&assignment, assignmentID).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	if assignment.IsCompleted {
		tx.Rollback()
		http.Error(w, "Assignment is closed", http.StatusBadRequest)
		return
	}

	if assignment.CurrentSubmissions >= assignment.MaxSubmissions {
		tx.Rollback()
		http.Error(w, "제출 인원이 마감되었습니다.", http.StatusBadRequest)
		return
	}

	var existing models.Submission
	if err := tx.Where("assignment_id = ? AND student_id = ?", assignmentID, userID).First(&existing).Error; err == nil {
		tx.Rollback()
		http.Error(w, "Already submitted", http.StatusConflict)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		http.Error(w, "Error checking submissions", http.StatusInternalServerError)
		return
	}

	submission := models.Submission{
		AssignmentID: uint(assignmentID),
		StudentID:    userID,
		FileURL:      submitRequest.FileURL,
	}
	if err := tx.Create(&submission).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating submission", http.StatusInternalServerError)
		return
	}

	if err := tx.Model(&models.Assignment{}).Where("id = ?", assignmentID).
		UpdateColumn("current_submissions", gorm.Expr("current_submissions + ?", 1)).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating submission count", http.StatusInternalServerError)
		return
	}

	tx.Commit()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(submission)
}

// GetSubmissions lists an assignment's submissions with their feedback
// comments. Comments are fetched as a concurrent batch and merged by
// submission index.
func (h *AssignmentHandler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid assignment ID", http.StatusBadRequest)
		return
	}

	var assignment models.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		http.Error(w, "Assignment not found", http.StatusNotFound)
		return
	}

	var submissions []models.Submission
	if err := h.db.Preload("Student").Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").Find(&submissions).Error; err != nil {
		http.Error(w, "Error retrieving submissions", http.StatusInternalServerError)
		return
	}

	commentLists := make([][]models.Comment, len(submissions))
	var wg sync.WaitGroup
	for i := range submissions {
		wg.Add(1)
		go func(i int, submissionID uint) {
			defer wg.Done()
			var comments []models.Comment
			if err := h.db.Preload("Author").Where("submission_id = ?", submissionID).
				Order("created_at ASC").Find(&comments).Error; err != nil {
				log.Printf("Error loading comments for submission %d: %v", submissionID, err)
				return
			}
			commentLists[i] = comments
		}(i, submissions[i].ID)
	}
	wg.Wait()

	response := make([]map[string]interface{}, 0, len(submissions))
	for i, submission := range submissions {
		if submission.Student != nil {
			submission.Student.ProfileImage = utils.AvatarOr(submission.Student.ProfileImage, submission.Student.Email)
		}
		response = append(response, map[string]interface{}{
			"submission": submission,
			"comments":   commentLists[i],
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"submissions": response,
		"total":       len(response),
	})
}

// CheckSubmission marks a submission as checked with optional feedback
func (h *AssignmentHandler) CheckSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	submissionID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var checkRequest struct {
		IsChecked bool   `json:"is_checked"`
		Feedback  string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&checkRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var submission models.Submission
	if err := h.db.First(&submission, submissionID).Error; err != nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}

	submission.IsChecked = checkRequest.IsChecked
	if checkRequest.IsChecked {
		submission.CheckedBy = userID
	} else {
		submission.CheckedBy = 0
	}
	if checkRequest.Feedback != "" {
		submission.Feedback = checkRequest.Feedback
	}

	if err := h.db.Save(&submission).Error; err != nil {
		http.Error(w, "Error updating submission", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(submission)
}

// DeleteSubmission removes a submission (admin only) and decrements the
// assignment's submission count
func (h *AssignmentHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	submissionID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	var submission models.Submission
	if err := h.db.First(&submission, submissionID).Error; err != nil {
		http.Error(w, "Submission not found", http.StatusNotFound)
		return
	}

	tx := h.db.Begin()

	result := tx.Delete(&submission)
	if result.Error != nil {
		tx.Rollback()
		http.Error(w, "Error deleting submission", http.StatusInternalServerError)
		return
	}

	if result.RowsAffected > 0 {
		if err := tx.Model(&models.Assignment{}).
			Where("id = ? AND current_submissions > 0", submission.AssignmentID).
			UpdateColumn("current_submissions", gorm.Expr("current_submissions - ?", 1)).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error updating submission count", http.StatusInternalServerError)
			return
		}
	}

	tx.Commit()

	if submission.FileURL != "" {
		if err := h.removeStoredFile(r, submission.FileURL); err != nil {
			log.Printf("Error removing submission file %s: %v", submission.FileURL, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Submission deleted successfully",
	})
}

// removeStoredFile deletes a submission's uploaded file from the bucket
// or from local disk, depending on where the URL points.
func (h *AssignmentHandler) removeStoredFile(r *http.Request, fileURL string) error {
	if strings.HasPrefix(fileURL, "/files/") {
		return utils.DeleteFile(fileURL)
	}
	if h.store == nil {
		return nil
	}
	return h.store.DeleteFile(r.Context(), path.Base(fileURL))
}
