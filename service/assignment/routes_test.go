package assignment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
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
		&models.Comment{},
		&models.Assignment{},
		&models.Submission{},
	); err != nil {
		t.Fatalf("error migrating test database: %v", err)
	}
	return db
}

func newRouter(db *gorm.DB) *mux.Router {
	router := mux.NewRouter()
	NewAssignmentHandler(db, nil).RegisterRoutes(router)
	return router
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	user := models.User{Name: "Test User", Email: email, PasswordHash: "x", Role: role, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("error creating test user: %v", err)
	}
	return user
}

func createTestAssignment(t *testing.T, db *gorm.DB, authorID uint, max, current int) models.Assignment {
	post := models.Post{AuthorID: authorID, Title: "hw", Content: "do it", Type: models.PostTypeAssignment}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("error creating assignment post: %v", err)
	}
	assignment := models.Assignment{
		PostID:             post.ID,
		DueDate:            time.Now().Add(24 * time.Hour),
		MaxSubmissions:     max,
		CurrentSubmissions: current,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("error creating assignment: %v", err)
	}
	return assignment
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

func TestCreateAssignmentRequiresStaff(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)

	rec := doJSON(t, router, "POST", "/assignments", authHeader(t, student.ID), map[string]interface{}{
		"title":           "hw",
		"content":         "do it",
		"due_date":        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"max_submissions": 10,
	})

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestCreateAssignmentCreatesPostAndAssignment(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)

	rec := doJSON(t, router, "POST", "/assignments", authHeader(t, teacher.ID), map[string]interface{}{
		"title":           "hw",
		"content":         "do it",
		"due_date":        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"max_submissions": 10,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var postCount, assignmentCount int64
	db.Model(&models.Post{}).Where("type = ?", models.PostTypeAssignment).Count(&postCount)
	db.Model(&models.Assignment{}).Count(&assignmentCount)
	if postCount != 1 || assignmentCount != 1 {
		t.Errorf("expected 1 post and 1 assignment, got %d and %d", postCount, assignmentCount)
	}
}

func TestCreateSubmissionIncrementsCount(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 10, 0)

	rec := doJSON(t, router, "POST", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), authHeader(t, student.ID), map[string]string{
		"file_url": "/files/hw.pdf",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Assignment
	db.First(&updated, assignment.ID)
	if updated.CurrentSubmissions != 1 {
		t.Errorf("expected current_submissions 1, got %d", updated.CurrentSubmissions)
	}
}

func TestCreateSubmissionAtCapacity(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 1, 1)

	rec := doJSON(t, router, "POST", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), authHeader(t, student.ID), map[string]string{
		"file_url": "/files/hw.pdf",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "제출 인원이 마감되었습니다.") {
		t.Errorf("expected capacity message, got %q", rec.Body.String())
	}

	var count int64
	db.Model(&models.Submission{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no submissions, found %d", count)
	}

	var updated models.Assignment
	db.First(&updated, assignment.ID)
	if updated.CurrentSubmissions != 1 {
		t.Errorf("expected current_submissions unchanged at 1, got %d", updated.CurrentSubmissions)
	}
}

func TestCreateSubmissionClosed(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 10, 0)
	db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).Update("is_completed", true)

	rec := doJSON(t, router, "POST", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), authHeader(t, student.ID), map[string]string{
		"file_url": "/files/hw.pdf",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestCreateSubmissionDuplicate(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 10, 0)

	auth := authHeader(t, student.ID)
	body := map[string]string{"file_url": "/files/hw.pdf"}

	rec := doJSON(t, router, "POST", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), auth, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 on first submission, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), auth, body)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409 on second submission, got %d", rec.Code)
	}

	var updated models.Assignment
	db.First(&updated, assignment.ID)
	if updated.CurrentSubmissions != 1 {
		t.Errorf("expected current_submissions 1, got %d", updated.CurrentSubmissions)
	}
}

func TestDeleteSubmissionDecrementsCount(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, admin.ID, 10, 1)
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, FileURL: "/files/hw.pdf"}
	db.Create(&submission)

	rec := doJSON(t, router, "DELETE", fmt.Sprintf("/submissions/%d", submission.ID), authHeader(t, admin.ID), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.Assignment
	db.First(&updated, assignment.ID)
	if updated.CurrentSubmissions != 0 {
		t.Errorf("expected current_submissions 0, got %d", updated.CurrentSubmissions)
	}
}

func TestDeleteSubmissionRemovesLocalFile(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	admin := createTestUser(t, db, "admin@test.com", models.RoleAdmin)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, admin.ID, 10, 1)

	if err := os.MkdirAll(utils.UploadPath, 0755); err != nil {
		t.Fatalf("error creating upload dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll("uploads") })
	filename := "20260830-test-submission.pdf"
	filePath := filepath.Join(utils.UploadPath, filename)
	if err := os.WriteFile(filePath, []byte("homework"), 0644); err != nil {
		t.Fatalf("error writing test file: %v", err)
	}

	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, FileURL: "/files/" + filename}
	db.Create(&submission)

	rec := doJSON(t, router, "DELETE", fmt.Sprintf("/submissions/%d", submission.ID), authHeader(t, admin.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Error("expected stored submission file to be removed")
	}
}

func TestDeleteSubmissionRequiresAdmin(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 10, 1)
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, FileURL: "/files/hw.pdf"}
	db.Create(&submission)

	rec := doJSON(t, router, "DELETE", fmt.Sprintf("/submissions/%d", submission.ID), authHeader(t, teacher.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for teacher, got %d", rec.Code)
	}
}

func TestGetSubmissionsRequiresStaff(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	teacher := createTestUser(t, db, "teacher@test.com", models.RoleTeacher)
	student := createTestUser(t, db, "student@test.com", models.RoleStudent)
	assignment := createTestAssignment(t, db, teacher.ID, 10, 0)

	rec := doJSON(t, router, "GET", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), authHeader(t, student.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for student, got %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", fmt.Sprintf("/assignments/%d/submissions", assignment.ID), authHeader(t, teacher.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for teacher, got %d: %s", rec.Code, rec.Body.String())
	}
}
