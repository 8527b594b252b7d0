package hikvision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUsersPaging(t *testing.T) {
	var positions []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.String(), "/ISAPI/AccessControl/UserInfo/Search")

		var req userSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		positions = append(positions, req.UserInfoSearchCond.SearchResultPosition)

		resp := userSearchResponse{}
		if req.UserInfoSearchCond.SearchResultPosition == 0 {
			resp.UserInfoSearch.ResponseStatusStrg = "MORE"
			resp.UserInfoSearch.UserInfo = []DeviceUser{
				{EmployeeNo: "1042", Name: "Karimov Aziz"},
				{EmployeeNo: "1043", Name: "Rashidova Nilufar"},
			}
		} else {
			resp.UserInfoSearch.ResponseStatusStrg = "OK"
			resp.UserInfoSearch.UserInfo = []DeviceUser{
				{EmployeeNo: "1044", Name: "Tosheva Malika"},
			}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewISAPIClient("admin", "secret", time.Second)
	users, err := c.FetchUsers(context.Background(), strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, positions)
	require.Len(t, users, 3)
	assert.Equal(t, "1042", users[0].EmployeeNo)
	assert.Equal(t, "Tosheva Malika", users[2].Name)
}

func TestFetchUsersErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewISAPIClient("admin", "wrong", time.Second)
	_, err := c.FetchUsers(context.Background(), strings.TrimPrefix(srv.URL, "http://"))
	assert.Error(t, err)
}
