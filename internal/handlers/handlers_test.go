package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestor-dev/gestor/db"
	"github.com/gestor-dev/gestor/internal/auth"
	"github.com/gestor-dev/gestor/internal/models"
	"github.com/gestor-dev/gestor/internal/router"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("failed to init JWT secret: %v", err)
	}

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = database.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Alert{},
		&models.Token{},
		&models.TaskChange{},
	)

	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = database

	return router.NewRouter()
}

func seedUser(t *testing.T, username string, rol models.Role) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		Nombre:       username,
		Rol:          rol,
		PasswordHash: string(hash),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	token, err := auth.GenerateAccessToken(user)

	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)

	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}

	return payload
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupServer(t)

	w := doJSON(t, r, "POST", "/api/usuarios", "", gin.H{
		"username": "maria",
		"email":    "maria@example.com",
		"nombre":   "María",
		"password": "password123",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	payload := decode(t, w)

	if payload["token"] == "" || payload["refresh_token"] == "" {
		t.Error("expected token pair in register response")
	}

	w = doJSON(t, r, "POST", "/api/login", "", gin.H{"username": "maria", "password": "password123"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, "POST", "/api/login", "", gin.H{"username": "maria", "password": "wrongpassword"})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/login", "", gin.H{"username": "nobody", "password": "password123"})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestRefreshRotation(t *testing.T) {
	r := setupServer(t)
	seedUser(t, "maria", models.RoleUsuario)

	w := doJSON(t, r, "POST", "/api/login", "", gin.H{"username": "maria", "password": "password123"})

	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d", w.Code)
	}

	refresh := decode(t, w)["refresh_token"].(string)

	w = doJSON(t, r, "POST", "/api/refresh", "", gin.H{"refresh_token": refresh})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from refresh, got %d: %s", w.Code, w.Body.String())
	}

	// The old refresh token was consumed.
	w = doJSON(t, r, "POST", "/api/refresh", "", gin.H{"refresh_token": refresh})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for replayed refresh token, got %d", w.Code)
	}
}

func TestMeRequiresAuth(t *testing.T) {
	r := setupServer(t)
	user, token := seedUser(t, "maria", models.RoleUsuario)

	w := doJSON(t, r, "GET", "/api/usuarios/me", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", "/api/usuarios/me", token, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	payload := decode(t, w)

	if uint(payload["id"].(float64)) != user.ID {
		t.Errorf("expected own profile, got %v", payload)
	}
}

func TestProjectCreationPolicy(t *testing.T) {
	r := setupServer(t)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin)
	owner, ownerToken := seedUser(t, "owner", models.RoleUsuario)
	_, strangerToken := seedUser(t, "stranger", models.RoleUsuario)

	body := gin.H{
		"nombre":             "Proyecto 1",
		"descripcion":        "desc",
		"fecha_inicio":       "2026-01-01",
		"fecha_finalizacion": "2026-06-30",
		"usuario":            owner.ID,
	}

	w := doJSON(t, r, "POST", "/api/projects", ownerToken, body)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin project creation, got %d", w.Code)
	}

	w = doJSON(t, r, "POST", "/api/projects", adminToken, body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	projectID := uint(decode(t, w)["id"].(float64))

	// The owner got an assignment alert.
	w = doJSON(t, r, "GET", "/api/alertas", ownerToken, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 listing alerts, got %d", w.Code)
	}

	var alerts []map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("failed to decode alerts: %v", err)
	}

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert for owner, got %d", len(alerts))
	}

	path := fmt.Sprintf("/api/projects/%d", projectID)

	w = doJSON(t, r, "GET", path, strangerToken, nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for stranger project read, got %d", w.Code)
	}

	w = doJSON(t, r, "GET", path, ownerToken, nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for owner project read, got %d", w.Code)
	}
}

func TestTaskStatusPatchByAssignee(t *testing.T) {
	r := setupServer(t)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin)
	owner, _ := seedUser(t, "owner", models.RoleUsuario)
	assignee, assigneeToken := seedUser(t, "assignee", models.RoleUsuario)

	project := models.Project{Nombre: "P", UsuarioID: owner.ID}

	if err := db.DB.Create(&project).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	w := doJSON(t, r, "POST", "/api/tasks", adminToken, gin.H{
		"nombre":     "Tarea 1",
		"proyecto":   project.ID,
		"asignada_a": assignee.ID,
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	taskID := uint(decode(t, w)["id"].(float64))
	path := fmt.Sprintf("/api/tasks/%d", taskID)

	w = doJSON(t, r, "PATCH", path, assigneeToken, gin.H{"estado": "en_progreso"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if decode(t, w)["estado"] != "en_progreso" {
		t.Error("expected estado en_progreso in response")
	}

	// Assignee may not rename the task.
	w = doJSON(t, r, "PATCH", path, assigneeToken, gin.H{"nombre": "otra", "estado": "completada"})

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-status fields, got %d", w.Code)
	}

	// Assignment alert plus status alert.
	w = doJSON(t, r, "GET", "/api/alertas", assigneeToken, nil)

	var alerts []map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("failed to decode alerts: %v", err)
	}

	if len(alerts) != 2 {
		t.Errorf("expected 2 alerts for assignee, got %d", len(alerts))
	}
}

func TestTaskListFilterByProject(t *testing.T) {
	r := setupServer(t)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin)
	owner, _ := seedUser(t, "owner", models.RoleUsuario)
	assignee, assigneeToken := seedUser(t, "assignee", models.RoleUsuario)

	p1 := models.Project{Nombre: "P1", UsuarioID: owner.ID}
	p2 := models.Project{Nombre: "P2", UsuarioID: owner.ID}
	db.DB.Create(&p1)
	db.DB.Create(&p2)

	for _, p := range []models.Project{p1, p2} {
		w := doJSON(t, r, "POST", "/api/tasks", adminToken, gin.H{
			"nombre":     "Tarea",
			"proyecto":   p.ID,
			"asignada_a": assignee.ID,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("failed to create task: %d", w.Code)
		}
	}

	w := doJSON(t, r, "GET", fmt.Sprintf("/api/tasks?project_id=%d", p1.ID), assigneeToken, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var tasks []map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("failed to decode tasks: %v", err)
	}

	if len(tasks) != 1 {
		t.Errorf("expected 1 task in project filter, got %d", len(tasks))
	}
}

func TestBulkHideEndpoint(t *testing.T) {
	r := setupServer(t)
	user, token := seedUser(t, "maria", models.RoleUsuario)

	a1 := models.Alert{UsuarioID: user.ID, Mensaje: "uno", Visible: true}
	a2 := models.Alert{UsuarioID: user.ID, Mensaje: "dos", Visible: true}
	db.DB.Create(&a1)
	db.DB.Create(&a2)

	w := doJSON(t, r, "PATCH", "/api/alertas/update-visibility", token, gin.H{
		"ids": []uint{a1.ID, a2.ID, 999},
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unresolvable id, got %d: %s", w.Code, w.Body.String())
	}

	var visible int64
	db.DB.Model(&models.Alert{}).Where("visible = ?", true).Count(&visible)

	if visible != 2 {
		t.Errorf("expected no alerts hidden after failed bulk, %d visible", visible)
	}

	w = doJSON(t, r, "PATCH", "/api/alertas/update-visibility", token, gin.H{
		"ids": []uint{a1.ID, a2.ID},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if decode(t, w)["updated"].(float64) != 2 {
		t.Errorf("expected updated=2, got %v", decode(t, w)["updated"])
	}
}

func TestDeleteSelfBlockedByDependents(t *testing.T) {
	r := setupServer(t)
	owner, token := seedUser(t, "owner", models.RoleUsuario)

	project := models.Project{Nombre: "P", UsuarioID: owner.ID}
	db.DB.Create(&project)

	w := doJSON(t, r, "DELETE", "/api/usuarios/delete", token, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for user with projects, got %d", w.Code)
	}

	db.DB.Delete(&project)

	w = doJSON(t, r, "DELETE", "/api/usuarios/delete", token, nil)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 after removing dependents, got %d", w.Code)
	}
}

func TestUserListScoping(t *testing.T) {
	r := setupServer(t)
	_, adminToken := seedUser(t, "admin", models.RoleAdmin)
	_, userToken := seedUser(t, "maria", models.RoleUsuario)

	w := doJSON(t, r, "GET", "/api/usuarios", adminToken, nil)

	var users []map[string]interface{}

	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("failed to decode users: %v", err)
	}

	if len(users) != 2 {
		t.Errorf("expected admin to list 2 users, got %d", len(users))
	}

	w = doJSON(t, r, "GET", "/api/usuarios", userToken, nil)

	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("failed to decode users: %v", err)
	}

	if len(users) != 1 || users[0]["username"] != "maria" {
		t.Errorf("expected regular user to list only themselves, got %v", users)
	}
}
