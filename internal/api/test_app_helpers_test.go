package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovella/internal/db"
	"github.com/terraincognita07/ovella/internal/models"
)

func newTestApp(t *testing.T) *fiber.App {
	return newTestAppWithLutealDefault(t, models.DefaultLutealPhaseDays)
}

func newTestAppWithLutealDefault(t *testing.T, lutealDefault int) *fiber.App {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "ovella-test.db")
	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	handler := NewHandler(database, "test-secret", time.UTC, false, lutealDefault)
	app := fiber.New(fiber.Config{AppName: "Ovella Test"})
	RegisterRoutes(app, handler)
	return app
}

func jsonRequest(t *testing.T, method string, target string, payload any) *http.Request {
	t.Helper()

	var body *bytes.Buffer
	if payload == nil {
		body = bytes.NewBuffer(nil)
	} else {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request payload: %v", err)
		}
		body = bytes.NewBuffer(encoded)
	}

	request := httptest.NewRequest(method, target, body)
	request.Header.Set("Content-Type", "application/json")
	return request
}

func doRequest(t *testing.T, app *fiber.App, request *http.Request) *http.Response {
	t.Helper()

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()

	decoded := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return decoded
}

func authCookieValue(t *testing.T, response *http.Response) string {
	t.Helper()

	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatal("expected an auth cookie in the response")
	return ""
}

// registerTestUser creates an account and returns its auth cookie value plus
// the one-time recovery code from the registration response.
func registerTestUser(t *testing.T, app *fiber.App, email string, password string) (string, string) {
	t.Helper()

	request := jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":            email,
		"password":         password,
		"confirm_password": password,
	})
	response := doRequest(t, app, request)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected status 201, got %d", email, response.StatusCode)
	}

	cookie := authCookieValue(t, response)
	body := decodeBody(t, response)
	recoveryCode, _ := body["recovery_code"].(string)
	if recoveryCode == "" {
		t.Fatal("expected a recovery code in the registration response")
	}
	return cookie, recoveryCode
}

func withAuth(request *http.Request, cookie string) *http.Request {
	request.AddCookie(&http.Cookie{Name: authCookieName, Value: cookie})
	return request
}
