package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
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
		&models.PasswordResetToken{},
		&models.SiteSetting{},
	); err != nil {
		t.Fatalf("error migrating test database: %v", err)
	}
	return db
}

func newRouter(db *gorm.DB) *mux.Router {
	router := mux.NewRouter()
	NewHandler(db).RegisterRoutes(router)
	return router
}

func createTestUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("error hashing password: %v", err)
	}
	user := models.User{Name: "Test User", Email: email, PasswordHash: string(hash), Role: role, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("error creating test user: %v", err)
	}
	return user
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

func TestRegisterMissingFields(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)

	rec := doJSON(t, router, "POST", "/register", "", map[string]string{
		"email": "a@test.com",
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no users, found %d", count)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)

	rec := doJSON(t, router, "POST", "/register", "", map[string]string{
		"name":     "New User",
		"email":    "new@test.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/login", "", map[string]string{
		"email":    "new@test.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("error decoding login response: %v", err)
	}
	if response["access_token"] == nil || response["access_token"] == "" {
		t.Error("expected an access token in the login response")
	}
	if response["refresh_token"] == nil || response["refresh_token"] == "" {
		t.Error("expected a refresh token in the login response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	createTestUser(t, db, "dup@test.com", "secret123", models.RoleStudent)

	rec := doJSON(t, router, "POST", "/register", "", map[string]string{
		"name":     "Dup User",
		"email":    "dup@test.com",
		"password": "secret123",
	})

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 user, found %d", count)
	}
}

func TestRegisterSignupsDisabled(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	db.Create(&models.SiteSetting{AllowSignup: false})

	rec := doJSON(t, router, "POST", "/register", "", map[string]string{
		"name":     "New User",
		"email":    "new@test.com",
		"password": "secret123",
	})

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestRegisterAdminRoleRejected(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)

	rec := doJSON(t, router, "POST", "/register", "", map[string]string{
		"name":     "Sneaky",
		"email":    "sneaky@test.com",
		"password": "secret123",
		"role":     models.RoleAdmin,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)

	rec := doJSON(t, router, "POST", "/login", "", map[string]string{
		"email":    "a@test.com",
		"password": "wrong",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	user := createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false)

	rec := doJSON(t, router, "POST", "/login", "", map[string]string{
		"email":    "a@test.com",
		"password": "secret123",
	})

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}
}

func TestGetUsersRequiresAdmin(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	student := createTestUser(t, db, "student@test.com", "secret123", models.RoleStudent)
	admin := createTestUser(t, db, "admin@test.com", "secret123", models.RoleAdmin)

	rec := doJSON(t, router, "GET", "/users", authHeader(t, student.ID), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403 for student, got %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/users", authHeader(t, admin.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateUserRequiresOwnership(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	db := setupTestDB(t)
	router := newRouter(db)
	owner := createTestUser(t, db, "owner@test.com", "secret123", models.RoleStudent)
	other := createTestUser(t, db, "other@test.com", "secret123", models.RoleStudent)

	rec := doJSON(t, router, "PUT", fmt.Sprintf("/users/%d", owner.ID), authHeader(t, other.ID), map[string]string{
		"name": "Hijacked",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", rec.Code)
	}

	rec = doJSON(t, router, "PUT", fmt.Sprintf("/users/%d", owner.ID), authHeader(t, owner.ID), map[string]string{
		"name": "Renamed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.User
	db.First(&updated, owner.ID)
	if updated.Name != "Renamed" {
		t.Errorf("expected name Renamed, got %q", updated.Name)
	}
}

func TestPasswordResetConfirmRequiresToken(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	user := createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)

	// No token was ever requested; the password must not change
	rec := doJSON(t, router, "POST", fmt.Sprintf("/reset-password/%d/confirm", user.ID), "", map[string]string{
		"password": "hijacked1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without token, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", fmt.Sprintf("/reset-password/%d/confirm", user.ID), "", map[string]string{
		"token":    "000000",
		"password": "hijacked1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 with unknown token, got %d", rec.Code)
	}

	var unchanged models.User
	db.First(&unchanged, user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(unchanged.PasswordHash), []byte("secret123")); err != nil {
		t.Error("expected password hash to be unchanged")
	}
}

func TestPasswordResetConfirmExpiredToken(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	user := createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)
	db.Create(&models.PasswordResetToken{UserID: user.ID, Token: "123456", ExpiresAt: time.Now().Add(-time.Minute)})

	rec := doJSON(t, router, "POST", fmt.Sprintf("/reset-password/%d/confirm", user.ID), "", map[string]string{
		"token":    "123456",
		"password": "newpass1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 with expired token, got %d", rec.Code)
	}

	var unchanged models.User
	db.First(&unchanged, user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(unchanged.PasswordHash), []byte("secret123")); err != nil {
		t.Error("expected password hash to be unchanged")
	}
}

func TestPasswordResetConfirm(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	user := createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)
	db.Create(&models.PasswordResetToken{UserID: user.ID, Token: "123456", ExpiresAt: time.Now().Add(5 * time.Minute)})

	rec := doJSON(t, router, "POST", fmt.Sprintf("/reset-password/%d/confirm", user.ID), "", map[string]string{
		"token":    "123456",
		"password": "newpass1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.User
	db.First(&updated, user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpass1")); err != nil {
		t.Error("expected password hash to match the new password")
	}

	// Tokens are single-shot
	var tokenCount int64
	db.Model(&models.PasswordResetToken{}).Where("user_id = ?", user.ID).Count(&tokenCount)
	if tokenCount != 0 {
		t.Errorf("expected reset tokens to be consumed, found %d", tokenCount)
	}
}

func TestVerifyResetToken(t *testing.T) {
	db := setupTestDB(t)
	router := newRouter(db)
	user := createTestUser(t, db, "a@test.com", "secret123", models.RoleStudent)
	db.Create(&models.PasswordResetToken{UserID: user.ID, Token: "reset-token", ExpiresAt: time.Now().Add(time.Hour)})

	rec := doJSON(t, router, "POST", "/verify-reset-token", "", map[string]string{
		"email": "a@test.com",
		"token": "reset-token",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/verify-reset-token", "", map[string]string{
		"email": "a@test.com",
		"token": "bogus",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for bad token, got %d", rec.Code)
	}
}
