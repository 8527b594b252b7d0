package hikvision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/icholy/digest"
)

const userSearchPageSize = 30

// DeviceUser is one access-control user as the terminal stores it.
type DeviceUser struct {
	EmployeeNo string `json:"employeeNo"`
	Name       string `json:"name"`
}

// ISAPIClient reads the user roster off a terminal over ISAPI. Read-only:
// the only request it issues is UserInfo/Search.
type ISAPIClient struct {
	http *http.Client
}

func NewISAPIClient(username, password string, timeout time.Duration) *ISAPIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ISAPIClient{
		http: &http.Client{
			Timeout: timeout,
			Transport: &digest.Transport{
				Username: username,
				Password: password,
			},
		},
	}
}

type userSearchCond struct {
	SearchID             string `json:"searchID"`
	SearchResultPosition int    `json:"searchResultPosition"`
	MaxResults           int    `json:"maxResults"`
}

type userSearchRequest struct {
	UserInfoSearchCond userSearchCond `json:"UserInfoSearchCond"`
}

type userSearchResponse struct {
	UserInfoSearch struct {
		ResponseStatusStrg string       `json:"responseStatusStrg"`
		NumOfMatches       int          `json:"numOfMatches"`
		UserInfo           []DeviceUser `json:"UserInfo"`
	} `json:"UserInfoSearch"`
}

// FetchUsers pages through the terminal's user list. The terminal signals the
// final page with responseStatusStrg "OK" ("MORE" while paging).
func (c *ISAPIClient) FetchUsers(ctx context.Context, host string) ([]DeviceUser, error) {
	url := fmt.Sprintf("http://%s/ISAPI/AccessControl/UserInfo/Search?format=json", host)

	var users []DeviceUser
	position := 0

	for {
		body, err := json.Marshal(userSearchRequest{UserInfoSearchCond: userSearchCond{
			SearchID:             "roster-sync",
			SearchResultPosition: position,
			MaxResults:           userSearchPageSize,
		}})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal search request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build search request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("user search failed: %w", err)
		}

		var page userSearchResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("user search returned status %d", resp.StatusCode)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode user search response: %w", err)
		}

		users = append(users, page.UserInfoSearch.UserInfo...)
		if page.UserInfoSearch.ResponseStatusStrg != "MORE" || len(page.UserInfoSearch.UserInfo) == 0 {
			return users, nil
		}
		position += len(page.UserInfoSearch.UserInfo)
	}
}
