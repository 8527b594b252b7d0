package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *SessionStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	return New(srv.URL, store), store, srv
}

func envelopeOK(w http.ResponseWriter, data interface{}) {
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func TestLoginPersistsToken(t *testing.T) {
	api, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "dispatcher", r.PostFormValue("username"))
		require.Equal(t, "secret123", r.PostFormValue("password"))
		envelopeOK(w, LoginResponse{AccessToken: "tok-1", TokenType: "bearer", Username: "dispatcher", Role: "dispatcher"})
	}))

	resp, err := api.Login(context.Background(), "dispatcher", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "dispatcher", sess.Username)
}

func TestLoginRejectsShortCredentials(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server must not be contacted")
	}))

	_, err := api.Login(context.Background(), "ab", "secret123")
	assert.ErrorContains(t, err, "username")

	_, err = api.Login(context.Background(), "dispatcher", "short")
	assert.ErrorContains(t, err, "password")
}

func TestBearerHeaderAttached(t *testing.T) {
	var gotAuth string
	api, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		envelopeOK(w, []Employee{{ID: 1, EmployeeNo: "1042"}})
	}))
	require.NoError(t, store.Save(Session{Token: "tok-9"}))

	emps, err := api.Employees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-9", gotAuth)
	require.Len(t, emps, 1)
	assert.Equal(t, "1042", emps[0].EmployeeNo)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	api, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	require.NoError(t, store.Save(Session{Token: "expired", Theme: "dark"}))

	_, err := api.Employees(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	// Preferences survive the forced logout.
	assert.Equal(t, "dark", sess.Theme)
}

func TestErrorEnvelopeSurfacesMessage(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": "CONFLICT", "message": "employee number already exists"},
		})
	}))

	_, err := api.CreateEmployee(context.Background(), Employee{EmployeeNo: "1042"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee number already exists")
}

func TestNonJSONErrorBody(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	_, err := api.Devices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestEmptyBodyIsNil(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.NoError(t, api.SyncExams(context.Background()))
}

func TestEventsQueryEncoding(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1042", q.Get("employee_no"))
		assert.Equal(t, "TURNSTILE_IN", q.Get("event_type"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Empty(t, q.Get("status"))
		envelopeOK(w, []Event{})
	}))

	_, err := api.Events(context.Background(), EventQuery{
		EmployeeNo: "1042", EventType: "TURNSTILE_IN", Limit: 50,
	})
	require.NoError(t, err)
}

func TestEventsPagedMeta(t *testing.T) {
	api, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    []Event{{ID: 7}},
			"meta":    Meta{Page: 2, Limit: 200, TotalItems: 401, TotalPages: 3},
		})
	}))

	events, meta, err := api.EventsPaged(context.Background(), EventQuery{}, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, meta)
	assert.Equal(t, int64(401), meta.TotalItems)
	assert.Equal(t, 3, meta.TotalPages)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewSessionStore(path)

	// Missing file reads as an empty session.
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)

	require.NoError(t, store.Save(Session{Token: "tok", Username: "op", Theme: "dark", Language: "uz"}))

	fresh := NewSessionStore(path)
	sess, err = fresh.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "uz", sess.Language)

	require.NoError(t, fresh.Clear())
	sess, err = NewSessionStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Equal(t, "dark", sess.Theme)
}

func TestSessionClearWithoutPriorLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, NewSessionStore(path).Save(Session{
		Token: "tok", Username: "op", Theme: "dark", Language: "uz",
	}))

	// A logout in a fresh process calls Clear before anything loaded the
	// file; the stored preferences must survive.
	require.NoError(t, NewSessionStore(path).Clear())

	sess, err := NewSessionStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
	assert.Empty(t, sess.Username)
	assert.Equal(t, "dark", sess.Theme)
	assert.Equal(t, "uz", sess.Language)
}

func TestLoginSurfacesCorruptSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeOK(w, LoginResponse{AccessToken: "tok-1"})
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	api := New(srv.URL, NewSessionStore(path))
	_, err := api.Login(context.Background(), "dispatcher", "secret123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")

	// The broken file is left alone rather than silently replaced.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}
