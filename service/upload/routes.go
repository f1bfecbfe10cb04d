package upload

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/jaehong-dev/eduhub-server/cmd/utils"
	"github.com/jaehong-dev/eduhub-server/storage"
)

type UploadHandler struct {
	store *storage.B2Storage
}

// NewUploadHandler takes the bucket storage; nil means uploads stay on
// local disk.
func NewUploadHandler(store *storage.B2Storage) *UploadHandler {
	return &UploadHandler{store: store}
}

func (h *UploadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/uploads", utils.AuthMiddleware(h.UploadFile)).Methods("POST")
	router.HandleFunc("/files/{filename}", h.ServeFile).Methods("GET")
}

// UploadFile accepts one multipart file, validates it and stores it
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(utils.MaxVideoSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := utils.UploadFilename(header.Filename)

	var fileURL string
	if h.store != nil {
		fileURL, err = h.store.UploadFile(r.Context(), filename, file)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error uploading file: %v", err), http.StatusInternalServerError)
			return
		}
	} else {
		fileURL, err = utils.SaveFile(file, filename)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error saving file: %v", err), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"url":      fileURL,
		"filename": filename,
	})
}

// ServeFile serves a locally stored upload
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	// Basic security check for directory traversal
	if containsDotDot(filename) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	filePath := filepath.Join(utils.UploadPath, filepath.Clean(filename))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Type", utils.ContentType(filePath))

	http.ServeFile(w, r, filePath)
}

func containsDotDot(v string) bool {
	if !filepath.IsAbs(v) {
		v = filepath.Clean(filepath.Join("/", v))
	}
	return filepath.Clean(v) != v
}
