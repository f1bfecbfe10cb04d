package book

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

type BookHandler struct {
	db *gorm.DB
}

func NewBookHandler(db *gorm.DB) *BookHandler {
	return &BookHandler{db: db}
}

func (h *BookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/books", utils.AuthMiddleware(utils.RequireRole(h.db, h.CreateBook, models.RoleAdmin))).Methods("POST")
	router.HandleFunc("/books", h.GetBooks).Methods("GET")
	router.HandleFunc("/books/{id}", h.GetBook).Methods("GET")
	router.HandleFunc("/books/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateBook, models.RoleAdmin))).Methods("PUT")
	router.HandleFunc("/books/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.DeleteBook, models.RoleAdmin))).Methods("DELETE")
}

// CreateBook adds a book to the catalog (admin only)
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var createRequest struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Category    string `json:"category"`
		CoverURL    string `json:"cover_url"`
		Link        string `json:"link"`
		PublishedAt string `json:"published_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&createRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createRequest.Title == "" || createRequest.Author == "" {
		http.Error(w, "Title and author are required", http.StatusBadRequest)
		return
	}

	book := models.Book{
		Title:       createRequest.Title,
		Author:      createRequest.Author,
		Description: createRequest.Description,
		Category:    createRequest.Category,
		CoverURL:    createRequest.CoverURL,
		Link:        createRequest.Link,
	}

	if createRequest.PublishedAt != "" {
		publishedAt, parseErr := time.Parse("2006-01-02", createRequest.PublishedAt)
		if parseErr != nil {
			http.Error(w, "Invalid published_at, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		book.PublishedAt = publishedAt
	}

	if err := h.db.Create(&book).Error; err != nil {
		http.Error(w, "Error creating book", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(book)
}

// GetBooks retrieves books with pagination
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 12

	query := h.db.Model(&models.Book{})

	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var books []models.Book
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&books).Error; err != nil {
		http.Error(w, "Error retrieving books", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"books":       books,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetBook retrieves a single book
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var book models.Book
	if err := h.db.First(&book, bookID).Error; err != nil {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// UpdateBook updates catalog fields (admin only)
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var updateRequest struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Category    string `json:"category"`
		CoverURL    string `json:"cover_url"`
		Link        string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var book models.Book
	if err := h.db.First(&book, bookID).Error; err != nil {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}

	if updateRequest.Title != "" {
		book.Title = updateRequest.Title
	}
	if updateRequest.Author != "" {
		book.Author = updateRequest.Author
	}
	if updateRequest.Description != "" {
		book.Description = updateRequest.Description
	}
	if updateRequest.Category != "" {
		book.Category = updateRequest.Category
	}
	if updateRequest.CoverURL != "" {
		book.CoverURL = updateRequest.CoverURL
	}
	if updateRequest.Link != "" {
		book.Link = updateRequest.Link
	}

	if err := h.db.Save(&book).Error; err != nil {
		http.Error(w, "Error updating book", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(book)
}

// DeleteBook removes a book (admin only)
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	result := h.db.Delete(&models.Book{}, bookID)
	if result.Error != nil {
		http.Error(w, "Error deleting book", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Book not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Book deleted successfully",
	})
}
