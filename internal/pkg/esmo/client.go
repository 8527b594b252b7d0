// Package esmo talks to the ESMO portal (Elektron Tibbiy Ko'rik Tizimi), the
// upstream system holding pre-shift medical screenings. The portal sits on the
// plant network behind a self-signed certificate and authenticates with a
// session cookie obtained from a form login.
package esmo

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// ExamRow is one screening as the portal exports it. Employees are identified
// by pass id; the poller maps them to registry employees.
type ExamRow struct {
	EsmoID            int64    `json:"id"`
	Terminal          string   `json:"terminal"`
	EmployeePassID    string   `json:"pass_id"`
	EmployeeName      string   `json:"full_name"`
	Result            string   `json:"result"`
	PressureSystolic  *int     `json:"pressure_systolic"`
	PressureDiastolic *int     `json:"pressure_diastolic"`
	Pulse             *int     `json:"pulse"`
	Temperature       *float64 `json:"temperature"`
	AlcoholMgL        *float64 `json:"alcohol_mg_l"`
	Timestamp         string   `json:"timestamp"` // local wall-clock, "2006-01-02 15:04:05"
}

// EmployeeRow is one row of the portal's own roster.
type EmployeeRow struct {
	PassID   string `json:"pass_id"`
	FullName string `json:"full_name"`
}

type Client struct {
	baseURL      string
	username     string
	password     string
	loginRetries int
	http         *http.Client

	loggedIn bool
}

func NewClient(baseURL, username, password string, timeout time.Duration, loginRetries int) *Client {
	if timeout < 5*time.Second {
		timeout = 5 * time.Second
	}
	if loginRetries < 1 {
		loginRetries = 1
	}

	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/") + "/",
		username:     username,
		password:     password,
		loginRetries: loginRetries,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				// Portal terminals present self-signed certs on the plant LAN.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
				Proxy:           nil,
			},
		},
	}
}

func (c *Client) login(ctx context.Context) error {
	form := url.Values{}
	form.Set("user_login", c.username)
	form.Set("user_pass", c.password)

	var lastErr error
	for attempt := 0; attempt < c.loginRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"login/", strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 400 {
			c.loggedIn = true
			return nil
		}
		lastErr = fmt.Errorf("esmo login: HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("esmo login failed after %d attempts: %w", c.loginRetries, lastErr)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if !c.loggedIn {
		if err := c.login(ctx); err != nil {
			return err
		}
	}

	u := c.baseURL + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Session expired; force a fresh login on the next call.
		c.loggedIn = false
		return fmt.Errorf("esmo session rejected: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("esmo %s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchExamsSince returns exam rows with upstream id greater than sinceID,
// newest first, reading at most maxPages export pages.
func (c *Client) FetchExamsSince(ctx context.Context, sinceID *int64, maxPages int) ([]ExamRow, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	var all []ExamRow
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprintf("%d", page))
		if sinceID != nil {
			q.Set("since_id", fmt.Sprintf("%d", *sinceID))
		}

		var rows []ExamRow
		if err := c.getJSON(ctx, "export/exams", q, &rows); err != nil {
			if page == 1 {
				return nil, err
			}
			// Later pages failing leaves us with a partial but usable batch.
			return all, nil
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)
	}
	return all, nil
}

// FetchEmployees reads the portal roster, up to maxPages pages.
func (c *Client) FetchEmployees(ctx context.Context, maxPages int) ([]EmployeeRow, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	var all []EmployeeRow
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprintf("%d", page))

		var rows []EmployeeRow
		if err := c.getJSON(ctx, "export/employees", q, &rows); err != nil {
			if page == 1 {
				return nil, err
			}
			return all, nil
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)
	}
	return all, nil
}

// ParseLocalTime parses the portal's local wall-clock timestamp in the given
// zone, falling back to now when the field is unreadable.
func ParseLocalTime(s string, loc *time.Location) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "02.01.2006 15:04:05"} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return t
		}
	}
	return time.Now().In(loc)
}
