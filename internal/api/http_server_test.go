package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testAPI struct {
	ts *httptest.Server
	db *database.DB
}

func newTestConfig() *config.APIConfig {
	return &config.APIConfig{
		HTTP:       config.APIHTTPConfig{Port: 0},
		UserHeader: config.DefaultUserHeader,
		RateLimit:  config.APIRateLimitConfig{Window: time.Minute},
	}
}

func newTestAPI(t *testing.T, cfg *config.APIConfig) *testAPI {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := Dependencies{
		Users:    service.NewUserService(db, nil, &logger),
		Items:    service.NewItemService(db, nil, &logger),
		Bookings: service.NewBookingService(db, nil, &logger),
		Requests: service.NewRequestService(db, nil, &logger),
		Store:    db,
		Limiter:  repository.NewMemoryRateLimiter(0),
		Exporter: export.NewXLSXExporter(),
	}
	server := NewHTTPServer(cfg, deps, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testAPI{ts: ts, db: db}
}

// do sends body as JSON and returns the status and raw response body.
// userID 0 omits the caller header.
func (a *testAPI) do(t *testing.T, method, path string, userID int64, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, a.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(config.DefaultUserHeader, fmt.Sprint(userID))
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (a *testAPI) decodeInto(t *testing.T, data []byte, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dst), string(data))
}

func (a *testAPI) errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	a.decodeInto(t, data, &body)
	return body.Message
}

func (a *testAPI) createUser(t *testing.T, name string) models.User {
	t.Helper()
	status, data := a.do(t, http.MethodPost, "/users", 0, map[string]string{
		"name":  name,
		"email": name + "@example.com",
	})
	require.Equal(t, http.StatusCreated, status, string(data))
	var u models.User
	a.decodeInto(t, data, &u)
	return u
}

func (a *testAPI) createItem(t *testing.T, ownerID int64, name string) models.Item {
	t.Helper()
	status, data := a.do(t, http.MethodPost, "/items", ownerID, map[string]any{
		"name":        name,
		"description": name + " to share",
		"available":   true,
	})
	require.Equal(t, http.StatusOK, status, string(data))
	var it models.Item
	a.decodeInto(t, data, &it)
	return it
}

func (a *testAPI) createBooking(t *testing.T, bookerID, itemID int64) models.Booking {
	t.Helper()
	now := time.Now().UTC()
	status, data := a.do(t, http.MethodPost, "/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  now.Add(time.Hour).Format("2006-01-02T15:04:05"),
		"end":    now.Add(2 * time.Hour).Format("2006-01-02T15:04:05"),
	})
	require.Equal(t, http.StatusOK, status, string(data))
	var b models.Booking
	a.decodeInto(t, data, &b)
	return b
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t, newTestConfig())

	status, _ := a.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestReadyz_DBFail(t *testing.T) {
	a := newTestAPI(t, newTestConfig())
	require.NoError(t, a.db.Close())

	status, _ := a.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestCallerHeader(t *testing.T) {
	a := newTestAPI(t, newTestConfig())

	status, data := a.do(t, http.MethodGet, "/items", 0, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, a.errorMessage(t, data), config.DefaultUserHeader)

	req, err := http.NewRequest(http.MethodGet, a.ts.URL+"/items", http.NoBody)
	require.NoError(t, err)
	req.Header.Set(config.DefaultUserHeader, "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	status, _ = a.do(t, http.MethodGet, "/items", 42, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUsersAPI(t *testing.T) {
	a := newTestAPI(t, newTestConfig())
	alice := a.createUser(t, "alice")

	t.Run("duplicate email", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "x", "email": "alice@example.com"})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("invalid email", func(t *testing.T) {
		status, data := a.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "x", "email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, a.errorMessage(t, data), "email")
	})

	t.Run("unknown field", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, "/users", 0, `{"name":"x","email":"x@example.com","role":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("empty body", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, "/users", 0, "")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("patch", func(t *testing.T) {
		status, data := a.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", alice.ID), 0, map[string]string{"name": "Alicia"})
		require.Equal(t, http.StatusOK, status)
		var u models.User
		a.decodeInto(t, data, &u)
		assert.Equal(t, "Alicia", u.Name)
		assert.Equal(t, "alice@example.com", u.Email)
	})

	t.Run("list and get", func(t *testing.T) {
		status, data := a.do(t, http.MethodGet, "/users", 0, nil)
		require.Equal(t, http.StatusOK, status)
		var users []models.User
		a.decodeInto(t, data, &users)
		assert.Len(t, users, 1)

		status, _ = a.do(t, http.MethodGet, "/users/999", 0, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("delete", func(t *testing.T) {
		status, _ := a.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
		assert.Equal(t, http.StatusNoContent, status)
		status, _ = a.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestItemsAPI(t *testing.T) {
	a := newTestAPI(t, newTestConfig())
	owner := a.createUser(t, "owner")
	other := a.createUser(t, "other")
	item := a.createItem(t, owner.ID, "Hammer")

	t.Run("missing available", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "Saw", "description": "Hand saw"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("not owner", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), other.ID, map[string]any{"name": "Mine"})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("search", func(t *testing.T) {
		status, data := a.do(t, http.MethodGet, "/items/search?text=hAmM", other.ID, nil)
		require.Equal(t, http.StatusOK, status)
		var items []models.Item
		a.decodeInto(t, data, &items)
		require.Len(t, items, 1)
		assert.Equal(t, item.ID, items[0].ID)

		status, data = a.do(t, http.MethodGet, "/items/search?text=", other.ID, nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, "[]", string(data))
	})

	t.Run("view", func(t *testing.T) {
		status, data := a.do(t, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), other.ID, nil)
		require.Equal(t, http.StatusOK, status)
		var view map[string]any
		a.decodeInto(t, data, &view)
		assert.Nil(t, view["lastBooking"])
		assert.Nil(t, view["nextBooking"])
		assert.Equal(t, []any{}, view["comments"])
	})

	t.Run("comment without booking", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), other.ID, map[string]string{"text": "ok"})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestBookingsAPI(t *testing.T) {
	a := newTestAPI(t, newTestConfig())
	owner := a.createUser(t, "owner")
	booker := a.createUser(t, "booker")
	stranger := a.createUser(t, "stranger")
	item := a.createItem(t, owner.ID, "Projector")

	booking := a.createBooking(t, booker.ID, item.ID)
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, item.ID, booking.Item.ID)
	assert.Equal(t, booker.ID, booking.Booker.ID)

	path := fmt.Sprintf("/bookings/%d", booking.ID)

	t.Run("stranger cannot see", func(t *testing.T) {
		status, _ := a.do(t, http.MethodGet, path, stranger.ID, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("booker cannot approve", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPatch, path+"?approved=true", booker.ID, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("approved flag required", func(t *testing.T) {
		status, _ := a.do(t, http.MethodPatch, path, owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("approve once", func(t *testing.T) {
		status, data := a.do(t, http.MethodPatch, path+"?approved=true", owner.ID, nil)
		require.Equal(t, http.StatusOK, status)
		var b models.Booking
		a.decodeInto(t, data, &b)
		assert.Equal(t, models.StatusApproved, b.Status)

		status, data = a.do(t, http.MethodPatch, path+"?approved=true", owner.ID, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, a.errorMessage(t, data), "already confirmed")
	})

	t.Run("invalid range", func(t *testing.T) {
		now := time.Now().UTC()
		status, _ := a.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
			"itemId": item.ID,
			"start":  now.Add(2 * time.Hour).Format(time.RFC3339),
			"end":    now.Add(time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("lists", func(t *testing.T) {
		status, data := a.do(t, http.MethodGet, "/bookings?state=future", booker.ID, nil)
		require.Equal(t, http.StatusOK, status)
		var list []models.Booking
		a.decodeInto(t, data, &list)
		require.Len(t, list, 1)

		status, data = a.do(t, http.MethodGet, "/bookings/owner", owner.ID, nil)
		require.Equal(t, http.StatusOK, status)
		a.decodeInto(t, data, &list)
		require.Len(t, list, 1)

		status, data = a.do(t, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", booker.ID, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", a.errorMessage(t, data))
	})

	t.Run("export", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, a.ts.URL+"/bookings/owner/export?state=ALL", http.NoBody)
		require.NoError(t, err)
		req.Header.Set(config.DefaultUserHeader, fmt.Sprint(owner.ID))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(models.ExportSheetName)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Projector", rows[1][1])
		assert.Equal(t, "APPROVED", rows[1][5])
	})
}

func TestRequestsAPI(t *testing.T) {
	a := newTestAPI(t, newTestConfig())
	alice := a.createUser(t, "alice")
	bob := a.createUser(t, "bob")

	status, data := a.do(t, http.MethodPost, "/requests", alice.ID, map[string]string{"description": "need a tent"})
	require.Equal(t, http.StatusOK, status)
	var req models.ItemRequest
	a.decodeInto(t, data, &req)

	status, _ = a.do(t, http.MethodPost, "/items", bob.ID, map[string]any{
		"name":        "Tent",
		"description": "Two person tent",
		"available":   true,
		"requestId":   req.ID,
	})
	require.Equal(t, http.StatusOK, status)

	status, data = a.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var got models.ItemRequest
	a.decodeInto(t, data, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tent", got.Items[0].Name)
	assert.Equal(t, bob.ID, got.Items[0].OwnerID)

	status, data = a.do(t, http.MethodGet, "/requests/all?from=0&size=5", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var others []models.ItemRequest
	a.decodeInto(t, data, &others)
	assert.Len(t, others, 1)

	status, _ = a.do(t, http.MethodGet, "/requests/all?from=-1", bob.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = a.do(t, http.MethodGet, "/requests/all?size=abc", bob.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

type failingUsers struct {
	domain.UserService
}

func (failingUsers) ListUsers(context.Context) ([]*models.User, error) {
	return nil, errors.New("database disk image is malformed")
}

func TestInternalErrorsAreMasked(t *testing.T) {
	logger := zerolog.New(io.Discard)
	server := NewHTTPServer(newTestConfig(), Dependencies{Users: failingUsers{}}, &logger)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/users")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"internal server error"}`, string(body))
}

func TestRateLimit(t *testing.T) {
	cfg := newTestConfig()
	cfg.RateLimit = config.APIRateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute}
	a := newTestAPI(t, cfg)

	status, _ := a.do(t, http.MethodGet, "/users", 7, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, "/users", 7, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = a.do(t, http.MethodGet, "/users", 8, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = a.do(t, http.MethodGet, "/healthz", 7, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCORSAndRequestID(t *testing.T) {
	a := newTestAPI(t, newTestConfig())

	req, _ := http.NewRequest(http.MethodOptions, a.ts.URL+"/items", http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req, _ = http.NewRequest(http.MethodGet, a.ts.URL+"/healthz", http.NoBody)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestHTTPServer_ShutdownUnstarted(t *testing.T) {
	logger := zerolog.New(io.Discard)
	server := NewHTTPServer(newTestConfig(), Dependencies{}, &logger)
	assert.NoError(t, server.Shutdown(context.Background()))
}
