package faq

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

type FAQHandler struct {
	db *gorm.DB
}

func NewFAQHandler(db *gorm.DB) *FAQHandler {
	return &FAQHandler{db: db}
}

func (h *FAQHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/faqs", utils.AuthMiddleware(utils.RequireRole(h.db, h.CreateFAQ, models.RoleAdmin))).Methods("POST")
	router.HandleFunc("/faqs", h.GetFAQs).Methods("GET")
	router.HandleFunc("/faqs/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateFAQ, models.RoleAdmin))).Methods("PUT")
	router.HandleFunc("/faqs/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.DeleteFAQ, models.RoleAdmin))).Methods("DELETE")
}

// CreateFAQ adds an FAQ entry (admin only)
func (h *FAQHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	var createRequest struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Category string `json:"category"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Question == "" || createRequest.Answer == "" {
		http.Error(w, "Question and answer are required", http.StatusBadRequest)
		return
	}

	faq := models.FAQ{
		Question: createRequest.Question,
		Answer:   createRequest.Answer,
		Category: createRequest.Category,
		Position: createRequest.Position,
	}

	if err := h.db.Create(&faq).Error; err != nil {
		http.Error(w, "Error creating FAQ", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(faq)
}

// GetFAQs lists FAQ entries ordered by position
func (h *FAQHandler) GetFAQs(w http.ResponseWriter, r *http.Request) {
	query := h.db.Model(&models.FAQ{})

	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var faqs []models.FAQ
	if err := query.Order("position ASC, id ASC").Find(&faqs).Error; err != nil {
		http.Error(w, "Error retrieving FAQs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(faqs)
}

// UpdateFAQ updates an FAQ entry (admin only)
func (h *FAQHandler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	faqID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid FAQ ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Category string `json:"category"`
		Position *int   `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var faq models.FAQ
	if err := h.db.First(&faq, faqID).Error; err != nil {
		http.Error(w, "FAQ not found", http.StatusNotFound)
		return
	}

	if updateRequest.Question != "" {
		faq.Question = updateRequest.Question
	}
	if updateRequest.Answer != "" {
		faq.Answer = updateRequest.Answer
	}
	if updateRequest.Category != "" {
		faq.Category = updateRequest.Category
	}
	if updateRequest.Position != nil {
		faq.Position = *updateRequest.Position
	}

	if err := h.db.Save(&faq).Error; err != nil {
		http.Error(w, "Error updating FAQ", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(faq)
}

// DeleteFAQ removes an FAQ entry (admin only)
func (h *FAQHandler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	faqID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid FAQ ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.FAQ{}, faqID)
	if result.Error != nil {
		http.Error(w, "Error deleting FAQ", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "FAQ not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "FAQ deleted successfully",
	})
}
