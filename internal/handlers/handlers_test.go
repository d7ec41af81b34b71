package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/notify"
	"github.com/splitbook/backend/internal/service"
	"github.com/splitbook/backend/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sink := notify.NewDispatcher(store, nil)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	reconciler := service.NewReconciler(store)

	h := Handlers{
		Auth:          NewAuthHandler(service.NewUserService(store, authenticator, jwtManager, reconciler)),
		Groups:        NewGroupHandler(service.NewGroupService(store, sink)),
		Records:       NewRecordHandler(service.NewLedgerService(store, sink)),
		Notifications: NewNotificationHandler(service.NewNotificationService(store)),
		Categories:    NewCategoryHandler(service.NewCategoryService(store)),
	}
	server := httptest.NewServer(NewRouter(h, jwtManager, []string{"*"}))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerUser(t *testing.T, server *httptest.Server, email, name string) (string, string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]any{
		"email": email, "name": name, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	return token, user["id"].(string)
}

func TestAPIFlow(t *testing.T) {
	server := newTestServer(t)

	aliceToken, aliceID := registerUser(t, server, "alice@example.com", "Alice")
	bobToken, bobID := registerUser(t, server, "bob@example.com", "Bob")

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]any{
			"email": "alice@example.com", "name": "Alice", "password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/groups", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var groupID string
	t.Run("create group", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, server.URL+"/api/groups", aliceToken, map[string]any{
			"name": "Trip", "memberIds": []string{bobID},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		groupID = body["id"].(string)
		assert.Equal(t, "USD", body["currency"])
	})

	t.Run("bad splits rejected", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/expenses", aliceToken, map[string]any{
			"groupId": groupID, "description": "Dinner", "amount": 30,
			"splits": []map[string]any{
				{"userId": aliceID, "amount": 10},
				{"userId": bobID, "amount": 10},
			},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("expense and balances", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/expenses", aliceToken, map[string]any{
			"groupId": groupID, "description": "Dinner", "amount": 30,
			"splits": []map[string]any{
				{"userId": aliceID, "amount": 15},
				{"userId": bobID, "amount": 15},
			},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/groups/"+groupID+"/balances", aliceToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	var paymentID string
	t.Run("settle up", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, server.URL+"/api/payments", bobToken, map[string]any{
			"groupId": groupID, "payerId": bobID, "receiverId": aliceID, "amount": 15, "method": "CASH",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		paymentID = body["id"].(string)
		verification := body["verification"].(map[string]any)
		assert.Equal(t, "PENDING", verification["status"])
	})

	t.Run("payer cannot verify own payment", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/payments/"+paymentID+"/verify", bobToken, map[string]any{
			"decision": "ACCEPTED",
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("receiver accepts once", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, server.URL+"/api/payments/"+paymentID+"/verify", aliceToken, map[string]any{
			"decision": "ACCEPTED",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		verification := body["verification"].(map[string]any)
		assert.Equal(t, "ACCEPTED", verification["status"])

		resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/payments/"+paymentID+"/verify", aliceToken, map[string]any{
			"decision": "DISPUTED",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown record is 404", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/records/nope", aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("notifications landed", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/notifications/unread-count", bobToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
