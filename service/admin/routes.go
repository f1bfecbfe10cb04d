package admin

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

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalTeachers    int64 `json:"total_teachers"`
	TotalStudents    int64 `json:"total_students"`
	TotalPosts       int64 `json:"total_posts"`
	TotalSubmissions int64 `json:"total_submissions"`
	PendingReports   int64 `json:"pending_reports"`
}

// RegisterRoutes registers admin routes; every route is admin-gated
func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.HandleFunc("/stats", utils.AuthMiddleware(utils.RequireRole(h.db, h.GetStats, models.RoleAdmin))).Methods("GET")
	adminRouter.HandleFunc("/settings", utils.AuthMiddleware(utils.RequireRole(h.db, h.GetSettings, models.RoleAdmin))).Methods("GET")
	adminRouter.HandleFunc("/settings", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateSettings, models.RoleAdmin))).Methods("PUT")
	adminRouter.HandleFunc("/reports", utils.AuthMiddleware(utils.RequireRole(h.db, h.GetReports, models.RoleAdmin))).Methods("GET")
	adminRouter.HandleFunc("/reports/{id}", utils.AuthMiddleware(utils.RequireRole(h.db, h.UpdateReport, models.RoleAdmin))).Methods("PUT")
	adminRouter.HandleFunc("/test-email", utils.AuthMiddleware(utils.RequireRole(h.db, h.SendTestEmail, models.RoleAdmin))).Methods("POST")
}

// GetStats returns platform-wide counts
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&stats.TotalTeachers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&stats.TotalStudents)
	h.db.Model(&models.Post{}).Count(&stats.TotalPosts)
	h.db.Model(&models.Submission{}).Count(&stats.TotalSubmissions)
	h.db.Model(&models.Report{}).Where("status = ?", "pending").Count(&stats.PendingReports)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetSettings returns the site settings row, creating it on first read
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.SiteSetting
	if err := h.db.First(&settings).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Error retrieving settings", http.StatusInternalServerError)
			return
		}
		settings = models.SiteSetting{AllowSignup: true}
		if err := h.db.Create(&settings).Error; err != nil {
			http.Error(w, "Error creating settings", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// UpdateSettings updates the site settings row
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updateRequest struct {
		SiteName    string `json:"site_name"`
		Intro       string `json:"intro"`
		BannerURL   string `json:"banner_url"`
		AllowSignup *bool  `json:"allow_signup"`
	}
	if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var settings models.SiteSetting
	if err := h.db.First(&settings).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Error retrieving settings", http.StatusInternalServerError)
			return
		}
		settings = models.SiteSetting{AllowSignup: true}
	}

	if updateRequest.SiteName != "" {
		settings.SiteName = updateRequest.SiteName
	}
	if updateRequest.Intro != "" {
		settings.Intro = updateRequest.Intro
	}
	if updateRequest.BannerURL != "" {
		settings.BannerURL = updateRequest.BannerURL
	}
	if updateRequest.AllowSignup != nil {
		settings.AllowSignup = *updateRequest.AllowSignup
	}

	if err := h.db.Save(&settings).Error; err != nil {
		http.Error(w, "Error updating settings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// GetReports lists moderation reports with pagination
func (h *AdminHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 20

	query := h.db.Model(&models.Report{}).Preload("Post")

	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ReportStatuses[status] {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var reports []models.Report
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&reports).Error; err != nil {
		http.Error(w, "Error retrieving reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"reports":     reports,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// UpdateReport moves a report to a new status
func (h *AdminHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reportID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	var statusRequest struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&statusRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !models.ReportStatuses[statusRequest.Status] {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	var report models.Report
	if err := h.db.First(&report, reportID).Error; err != nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	report.Status = statusRequest.Status
	if err := h.db.Save(&report).Error; err != nil {
		http.Error(w, "Error updating report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// SendTestEmail sends a test message through the configured mailer
func (h *AdminHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var emailRequest struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&emailRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if emailRequest.To == "" {
		http.Error(w, "Recipient is required", http.StatusBadRequest)
		return
	}

	if err := utils.SendMail(emailRequest.To, "Test Email", "This is a test email from the server."); err != nil {
		http.Error(w, "Error sending email", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Test email sent",
	})
}
