package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jaehong-dev/eduhub-server/cmd/models"
	"github.com/jaehong-dev/eduhub-server/cmd/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("error opening test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Submission{},
		&models.Report{},
		&models.SiteSetting{},
	); err != nil {
		t.Fatalf("error migrating test database: %v", err)
	}
	return db
}

func newRouter(db *gorm.DB) *mux.Router {
	router := mux.NewRouter()
	NewAdminHandler(db).RegisterRoutes(router)
	return router
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	user := models.User{Name: "Test User", Email: email, PasswordHash: "x", Role: role, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("error creating test user: %v", err)
	}
	return user
}

func createTestReport(t *testing.T, db *gorm.DB, userID uint) models.Report {
	post := models.Post{AuthorID: userID, Title: "t", Content: "c", Type: models.PostTypeFree}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("error creating test post: %v", err)
	}
	report := models.Report{PostID: post.ID, UserID: userID, Reason: "spam", Status: "pending"}
	if err := db.Create(&report).Error; err != nil {
		t.Fatalf("error creating test report: %v", err)
	}
	return report
}

func authHeader(t *testing.T, userID uint) string {
	token, err := utils.GenerateJWT(userID, time.Hour)
	if err != nil {
		t.Fatalf("error generating token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, router *mux.Router, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("error encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateReportInvalidStatus(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)
	report := createTestReport(t, db, admin.ID)

	rec := doJSON(t, router, "PUT", fmt.Sprintf("/admin/reports/%d", report.ID), authHeader(t, admin.ID), map[string]string{
		"status": "escalated",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for unknown status, got %d", rec.Code)
	}

	var unchanged models.Report
	db.First(&unchanged, report.ID)
	if unchanged.Status != "pending" {
		t.Errorf("expected report status to stay pending, got %q", unchanged.Status)
	}
}

func TestUpdateReport(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)
	report := createTestReport(t, db, admin.ID)

	rec := doJSON(t, router, "PUT", fmt.Sprintf("/admin/reports/%d", report.ID), authHeader(t, admin.ID), map[string]string{
		"status": "resolved",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Report
	db.First(&updated, report.ID)
	if updated.Status != "resolved" {
		t.Errorf("expected report status resolved, got %q", updated.Status)
	}
}

func TestUpdateReportRequiresAdmin(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	report := createTestReport(t, db, student.ID)

	rec := doJSON(t, router, "PUT", fmt.Sprintf("/admin/reports/%d", report.ID), authHeader(t, student.ID), map[string]string{
		"status": "resolved",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for student, got %d", rec.Code)
	}
}

func TestGetReportsInvalidStatusFilter(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)

	rec := doJSON(t, router, "GET", "/admin/reports?status=bogus", authHeader(t, admin.ID), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for unknown filter, got %d", rec.Code)
	}
}

func TestGetSettingsCreatesRow(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)

	rec := doJSON(t, router, "GET", "/admin/settings", authHeader(t, admin.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var settings models.SiteSetting
	if err := db.First(&settings).Error; err != nil {
		t.Fatalf("expected settings row to exist: %v", err)
	}
	if !settings.AllowSignup {
		t.Error("expected signups enabled by default")
	}
}

func TestUpdateSettingsTogglesSignup(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)

	rec := doJSON(t, router, "PUT", "/admin/settings", authHeader(t, admin.ID), map[string]interface{}{
		"site_name":    "EduHub",
		"allow_signup": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var settings models.SiteSetting
	if err := db.First(&settings).Error; err != nil {
		t.Fatalf("expected settings row to exist: %v", err)
	}
	if settings.AllowSignup {
		t.Error("expected signups disabled")
	}
	if settings.SiteName != "EduHub" {
		t.Errorf("expected site name EduHub, got %q", settings.SiteName)
	}
}

func TestGetStats(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)
	createTestUser(t, db, "student@test.com", models.RoleStudent)
	createTestReport(t, db, admin.ID)

	rec := doJSON(t, router, "GET", "/admin/stats", authHeader(t, admin.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var stats DashboardStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("error decoding stats: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.TotalStudents != 1 {
		t.Errorf("expected 1 student, got %d", stats.TotalStudents)
	}
	if stats.PendingReports != 1 {
		t.Errorf("expected 1 pending report, got %d", stats.PendingReports)
	}
}
