package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-rms/internal/adapters/http/middleware"
	"campus-rms/internal/config"
	"campus-rms/internal/core/services"
	"campus-rms/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func newClient(t *testing.T) *client {
	t.Helper()
	store, g := testutil.Stores(t)
	cfg := &config.Config{AppMode: "dev", RateLimitPerMinute: 1000, AuthRateLimit: 1000}
	svc := services.New(store, g, testutil.Hasher(), testutil.JWT)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, svc, store, g, cfg)
	return &client{t: t, app: app}
}

func (c *client) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (c *client) register(name, email, role, department string) (token, userID string) {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":       name,
		"email":      email,
		"password":   "password123",
		"role":       role,
		"department": department,
	})
	if status != http.StatusCreated {
		c.t.Fatalf("register %s: status %d %s", email, status, env.Error)
	}
	var data struct {
		Token string `json:"token"`
		User  struct {
			UserID string `json:"userId"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.t.Fatalf("decode register: %v", err)
	}
	return data.Token, data.User.UserID
}

func decodeID(t *testing.T, env envelope, key string) string {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	id, _ := data[key].(string)
	if id == "" {
		t.Fatalf("no %s in %s", key, env.Data)
	}
	return id
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/api/v1/users", "/api/v1/equipment", "/api/v1/events", "/api/v1/admin/consistency"} {
		status, env := c.do(http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized || env.Success {
			t.Fatalf("GET %s = %d", path, status)
		}
	}

	status, _ := c.do(http.MethodGet, "/api/v1/equipment", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", status)
	}
}

func TestHealthReportsBothStores(t *testing.T) {
	c := newClient(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := c.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestLoanFlowOverHTTP(t *testing.T) {
	c := newClient(t)

	staff, _ := c.register("Sam Staff", "staff@campus.test", "STAFF", "Admin")
	hod, _ := c.register("Hana Head", "hod@campus.test", "HOD", "CS")
	student, studentID := c.register("Stu Dent", "student@campus.test", "STUDENT", "CS")
	other, _ := c.register("Oli Other", "other@campus.test", "STUDENT", "CS")

	status, env := c.do(http.MethodPost, "/api/v1/equipment", student, map[string]any{
		"name": "Oscilloscope", "category": "Lab", "department": "CS",
	})
	if status != http.StatusForbidden {
		t.Fatalf("student create equipment = %d", status)
	}

	status, env = c.do(http.MethodPost, "/api/v1/equipment", staff, map[string]any{
		"name": "Oscilloscope", "category": "Lab", "department": "CS",
	})
	if status != http.StatusCreated {
		t.Fatalf("create equipment = %d %s", status, env.Error)
	}
	equipmentID := decodeID(t, env, "equipmentId")

	from := time.Now().Add(24 * time.Hour).UTC()
	body := map[string]any{
		"equipmentId":   equipmentID,
		"requiredFrom":  from,
		"requiredUntil": from.Add(48 * time.Hour),
		"purpose":       "lab work",
		"studentId":     "someone-else",
	}
	status, _ = c.do(http.MethodPost, "/api/v1/requests", hod, body)
	if status != http.StatusForbidden {
		t.Fatalf("hod files request = %d", status)
	}

	status, env = c.do(http.MethodPost, "/api/v1/requests", student, body)
	if status != http.StatusCreated {
		t.Fatalf("create request = %d %s", status, env.Error)
	}
	requestID := decodeID(t, env, "requestId")

	var created struct {
		Student struct {
			UserID string `json:"userId"`
		} `json:"student"`
	}
	_ = json.Unmarshal(env.Data, &created)
	if created.Student.UserID != studentID {
		t.Fatalf("request student = %q, want caller %q", created.Student.UserID, studentID)
	}

	status, _ = c.do(http.MethodPut, "/api/v1/requests/"+requestID+"/cancel", other, nil)
	if status != http.StatusForbidden {
		t.Fatalf("foreign cancel = %d", status)
	}

	status, _ = c.do(http.MethodPut, "/api/v1/requests/"+requestID+"/approve", student, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student approve = %d", status)
	}

	status, env = c.do(http.MethodPut, "/api/v1/requests/"+requestID+"/approve", hod, map[string]string{"comments": "ok"})
	if status != http.StatusOK {
		t.Fatalf("approve = %d %s", status, env.Error)
	}

	status, env = c.do(http.MethodPut, "/api/v1/requests/"+requestID+"/approve", hod, nil)
	if status != http.StatusConflict {
		t.Fatalf("second approve = %d %s", status, env.Error)
	}

	status, env = c.do(http.MethodGet, "/api/v1/requests/missing", student, nil)
	if status != http.StatusNotFound {
		t.Fatalf("missing request = %d", status)
	}

	status, env = c.do(http.MethodPut, "/api/v1/requests/"+requestID+"/complete", staff, nil)
	if status != http.StatusOK {
		t.Fatalf("complete = %d %s", status, env.Error)
	}

	status, env = c.do(http.MethodGet, "/api/v1/admin/consistency", student, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student consistency = %d", status)
	}

	status, env = c.do(http.MethodGet, "/api/v1/admin/consistency", staff, nil)
	if status != http.StatusOK {
		t.Fatalf("consistency = %d %s", status, env.Error)
	}
	var report services.DriftReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatal(err)
	}
	if !report.Consistent() || report.Edges != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestUserUpdateIsSelfOrStaff(t *testing.T) {
	c := newClient(t)

	_, aliceID := c.register("Alice", "alice@campus.test", "STUDENT", "CS")
	bob, _ := c.register("Bob", "bob@campus.test", "STUDENT", "CS")

	status, _ := c.do(http.MethodPut, "/api/v1/users/"+aliceID, bob, map[string]string{"name": "Mallory"})
	if status != http.StatusForbidden {
		t.Fatalf("foreign update = %d", status)
	}

	status, _ = c.do(http.MethodDelete, "/api/v1/users/"+aliceID, bob, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student delete = %d", status)
	}
}
