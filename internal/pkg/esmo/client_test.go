package esmo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPortal(t *testing.T, exams map[int][]ExamRow) (*httptest.Server, *int) {
	t.Helper()
	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("user_login") != "poller" || r.PostFormValue("user_pass") != "secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		logins++
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc"})
	})
	mux.HandleFunc("/export/exams", func(w http.ResponseWriter, r *http.Request) {
		n := 3
		switch r.URL.Query().Get("page") {
		case "", "1":
			n = 1
		case "2":
			n = 2
		}
		_ = json.NewEncoder(w).Encode(exams[n])
	})
	return httptest.NewServer(mux), &logins
}

func TestFetchExamsSincePages(t *testing.T) {
	exams := map[int][]ExamRow{
		1: {
			{EsmoID: 105, EmployeePassID: "1042", Result: "passed", Timestamp: "2025-03-10 07:55:00"},
			{EsmoID: 104, EmployeePassID: "1043", Result: "failed", Timestamp: "2025-03-10 07:54:10"},
		},
		2: {
			{EsmoID: 103, EmployeePassID: "1044", Result: "ko'rik", Timestamp: "2025-03-10 07:50:00"},
		},
	}
	srv, logins := newPortal(t, exams)
	defer srv.Close()

	c := NewClient(srv.URL, "poller", "secret", 5*time.Second, 1)
	since := int64(100)
	rows, err := c.FetchExamsSince(context.Background(), &since, 5)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, int64(105), rows[0].EsmoID)
	assert.Equal(t, int64(103), rows[2].EsmoID)

	// The form login happens once per client, not once per page.
	assert.Equal(t, 1, *logins)
}

func TestFetchExamsBadCredentials(t *testing.T) {
	srv, _ := newPortal(t, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "poller", "wrong", 5*time.Second, 2)
	_, err := c.FetchExamsSince(context.Background(), nil, 1)
	assert.Error(t, err)
}

func TestFetchEmployees(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/export/employees", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			_ = json.NewEncoder(w).Encode([]EmployeeRow{})
			return
		}
		_ = json.NewEncoder(w).Encode([]EmployeeRow{
			{PassID: "1042", FullName: "Karimov Aziz Bakhtiyorovich"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "poller", "secret", 5*time.Second, 1)
	rows, err := c.FetchEmployees(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1042", rows[0].PassID)
}

func TestParseLocalTime(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	got := ParseLocalTime("2025-03-10 07:55:00", loc)
	assert.Equal(t, time.Date(2025, 3, 10, 2, 55, 0, 0, time.UTC), got.UTC())

	got = ParseLocalTime("10.03.2025 07:55:00", loc)
	assert.Equal(t, time.Date(2025, 3, 10, 2, 55, 0, 0, time.UTC), got.UTC())

	assert.WithinDuration(t, time.Now(), ParseLocalTime("junk", loc), 5*time.Second)
}
