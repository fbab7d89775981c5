package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/db"
)

const testSecretKey = "test-secret-key-0123456789"

func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ascend-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	handler, err := NewHandler(database, Options{SecretKey: testSecretKey, Location: time.UTC})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return NewApp(handler), handler
}

func doJSON(t *testing.T, app *fiber.App, method string, path string, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer response.Body.Close()
	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return response.StatusCode, payload
}

func decodeJSON[T any](t *testing.T, payload []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		t.Fatalf("decode %s: %v", string(payload), err)
	}
	return value
}

func readAPIError(t *testing.T, payload []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, payload)["error"]
}

func registerTestUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	status, payload := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"password":  "StrongPass1",
		"full_name": "Test User",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, status, string(payload))
	}
	return decodeJSON[authResponse](t, payload).Token
}

func idPath(format string, id uint) string {
	return fmt.Sprintf(format, id)
}
