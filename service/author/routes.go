package author

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

type AuthorHandler struct {
	db *gorm.DB
}

func NewAuthorHandler(db *gorm.DB) *AuthorHandler {
	return &AuthorHandler{db: db}
}

func (h *AuthorHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/authors", utils.AuthMiddleware(utils.RequireRole(h.db, h.CreateAuthor, models.RoleAdmin))).Methods("POST")
	router.HandleFunc("/authors", h.GetAuthors).Methods("GET")
	router.HandleFunc("/authors/{id}", h.GetAuthor).Methods("GET")
	router.HandleFunc("/authors/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateAuthor, models.RoleAdmin))).Methods("PUT")
	router.HandleFunc("/authors/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.DeleteAuthor, models.RoleAdmin))).Methods("DELETE")
}

// CreateAuthor creates an author profile page (admin only)
func (h *AuthorHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var createRequest struct {
		Name     string `json:"name"`
		Bio      string `json:"bio"`
		PhotoURL string `json:"photo_url"`
		Website  string `json:"website"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	profile := models.AuthorProfile{
		Name:     createRequest.Name,
		Bio:      createRequest.Bio,
		PhotoURL: createRequest.PhotoURL,
		Website:  createRequest.Website,
	}

	if err := h.db.Create(&profile).Error; err != nil {
		http.Error(w, "Error creating author profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

// GetAuthors lists author profiles
func (h *AuthorHandler) GetAuthors(w http.ResponseWriter, r *http.Request) {
	var profiles []models.AuthorProfile
	if err := h.db.Order("name ASC").Find(&profiles).Error; err != nil {
		http.Error(w, "Error retrieving authors", http.StatusInternalServerError)
		return
	}

	for i := range profiles {
		profiles[i].PhotoURL = utils.AvatarOr(profiles[i].PhotoURL, profiles[i].Name)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}

// GetAuthor retrieves one author profile
func (h *AuthorHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	authorID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	var profile models.AuthorProfile
	if err := h.db.First(&profile, authorID).Error; err != nil {
		http.Error(w, "Author not found", http.StatusNotFound)
		return
	}

	profile.PhotoURL = utils.AvatarOr(profile.PhotoURL, profile.Name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// UpdateAuthor updates an author profile (admin only)
func (h *AuthorHandler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	authorID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		Name     string `json:"name"`
		Bio      string `json:"bio"`
		PhotoURL string `json:"photo_url"`
		Website  string `json:"website"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var profile models.AuthorProfile
	if err := h.db.First(&profile, authorID).Error; err != nil {
		http.Error(w, "Author not found", http.StatusNotFound)
		return
	}

	if updateRequest.Name != "" {
		profile.Name = updateRequest.Name
	}
	if updateRequest.Bio != "" {
		profile.Bio = updateRequest.Bio
	}
	if updateRequest.PhotoURL != "" {
		profile.PhotoURL = updateRequest.PhotoURL
	}
	if updateRequest.Website != "" {
		profile.Website = updateRequest.Website
	}

	if err := h.db.Save(&profile).Error; err != nil {
		http.Error(w, "Error updating author profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

// DeleteAuthor removes an author profile (admin only)
func (h *AuthorHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	authorID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid author ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.AuthorProfile{}, authorID)
	if result.Error != nil {
		http.Error(w, "Error deleting author profile", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Author not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Author profile deleted successfully",
	})
}
