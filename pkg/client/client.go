package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrSessionExpired is returned on 401; the stored token is cleared
	// before it is returned, so the next call starts unauthenticated.
	ErrSessionExpired = errors.New("session expired, log in again")
)

// Client is a typed HTTP client for the backend API. One attempt per call,
// no retries; callers that poll wrap it in a Poller.
type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

func New(baseURL string, session *SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *Meta `json:"meta"`
}

// do performs one request and decodes the envelope's data into out. A nil
// out discards the payload. The returned Meta is non-nil only for paged
// listings.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) (*Meta, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess, err := c.session.Load(); err == nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.session.Clear()
		return nil, ErrSessionExpired
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != nil && env.Error.Message != "" {
			return nil, errors.New(env.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Meta, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, query, nil, "", out)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	_, err := c.do(ctx, http.MethodPost, path, nil, body, "application/json", out)
	return err
}

func (c *Client) patchJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, path, nil, bytes.NewReader(data), "application/json", out)
	return err
}

// Login posts form-encoded credentials and persists the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	// Mirror the server-side rule so bad input fails before a round trip.
	if len(username) < 3 {
		return LoginResponse{}, errors.New("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return LoginResponse{}, errors.New("password must be at least 6 characters")
	}
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var out LoginResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &out)
	if err != nil {
		return LoginResponse{}, err
	}
	sess, err := c.session.Load()
	if err != nil {
		return LoginResponse{}, fmt.Errorf("load session: %w", err)
	}
	sess.Token = out.AccessToken
	sess.Username = out.Username
	if err := c.session.Save(sess); err != nil {
		return LoginResponse{}, fmt.Errorf("persist session: %w", err)
	}
	return out, nil
}

// Logout drops the stored token. The backend keeps no session state.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	err := c.get(ctx, "/api/v1/employees", nil, &out)
	return out, err
}

// EmployeePatch carries partial updates; nil fields are left unchanged.
type EmployeePatch struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Patronymic *string `json:"patronymic,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (c *Client) CreateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	var out Employee
	err := c.postJSON(ctx, "/api/v1/employees", emp, &out)
	return out, err
}

func (c *Client) UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch) (Employee, error) {
	var out Employee
	err := c.patchJSON(ctx, fmt.Sprintf("/api/v1/employees/%d", id), patch, &out)
	return out, err
}

func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var out []Device
	err := c.get(ctx, "/api/v1/devices", nil, &out)
	return out, err
}

func (c *Client) DeviceDataStatus(ctx context.Context) ([]DeviceDataStatus, error) {
	var out []DeviceDataStatus
	err := c.get(ctx, "/api/v1/devices/data-status", nil, &out)
	return out, err
}

// EventQuery narrows GET /events; zero values are omitted.
type EventQuery struct {
	DateFrom   string
	DateTo     string
	EmployeeNo string
	DeviceID   int64
	EventType  string
	Status     string
	Limit      int
}

func (q EventQuery) values() url.Values {
	v := url.Values{}
	if q.DateFrom != "" {
		v.Set("date_from", q.DateFrom)
	}
	if q.DateTo != "" {
		v.Set("date_to", q.DateTo)
	}
	if q.EmployeeNo != "" {
		v.Set("employee_no", q.EmployeeNo)
	}
	if q.DeviceID != 0 {
		v.Set("device_id", fmt.Sprint(q.DeviceID))
	}
	if q.EventType != "" {
		v.Set("event_type", q.EventType)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Limit != 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	return v
}

func (c *Client) Events(ctx context.Context, q EventQuery) ([]Event, error) {
	var out []Event
	err := c.get(ctx, "/api/v1/events", q.values(), &out)
	return out, err
}

func (c *Client) EventsPaged(ctx context.Context, q EventQuery, page int) ([]Event, *Meta, error) {
	v := q.values()
	if page > 0 {
		v.Set("page", fmt.Sprint(page))
	}
	var out []Event
	meta, err := c.do(ctx, http.MethodGet, "/api/v1/events/paged", v, nil, "", &out)
	return out, meta, err
}

func (c *Client) IngestEvents(ctx context.Context, apiKey string, items []IngestItem) ([]IngestResult, error) {
	data, err := json.Marshal(map[string]interface{}{"events": items})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/events/ingest", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != nil && env.Error.Message != "" {
			return nil, errors.New(env.Error.Message)
		}
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var out []IngestResult
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}

func (c *Client) ReportSummary(ctx context.Context, dateFrom, dateTo string) (Summary, error) {
	v := url.Values{}
	if dateFrom != "" {
		v.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		v.Set("date_to", dateTo)
	}
	var out Summary
	err := c.get(ctx, "/api/v1/reports/summary", v, &out)
	return out, err
}

func (c *Client) InsideMine(ctx context.Context) ([]InsideMineItem, error) {
	var out []InsideMineItem
	err := c.get(ctx, "/api/v1/reports/inside-mine", nil, &out)
	return out, err
}

func (c *Client) ToolDebts(ctx context.Context, day string) ([]ToolDebtItem, error) {
	v := url.Values{}
	if day != "" {
		v.Set("day", day)
	}
	var out []ToolDebtItem
	err := c.get(ctx, "/api/v1/reports/tool-debts", v, &out)
	return out, err
}

// DailyMineSummary fetches the attendance aggregation for one facility-local
// day (YYYY-MM-DD, empty for today).
func (c *Client) DailyMineSummary(ctx context.Context, day string) ([]DailySummaryRow, error) {
	v := url.Values{}
	if day != "" {
		v.Set("day", day)
	}
	var out []DailySummaryRow
	err := c.get(ctx, "/api/v1/reports/daily-mine-summary", v, &out)
	return out, err
}

func (c *Client) BlockedAttempts(ctx context.Context, day string) ([]BlockedAttempt, error) {
	v := url.Values{}
	if day != "" {
		v.Set("day", day)
	}
	var out []BlockedAttempt
	err := c.get(ctx, "/api/v1/reports/blocked-attempts", v, &out)
	return out, err
}

func (c *Client) EsmoSummary24h(ctx context.Context, day string) (EsmoSummary, error) {
	v := url.Values{}
	if day != "" {
		v.Set("day", day)
	}
	var out EsmoSummary
	err := c.get(ctx, "/api/v1/reports/esmo-summary-24h", v, &out)
	return out, err
}

func (c *Client) ReportDashboard(ctx context.Context) (Dashboard, error) {
	var out Dashboard
	err := c.get(ctx, "/api/v1/reports/dashboard", nil, &out)
	return out, err
}

// ExamQuery narrows GET /medical/exams.
type ExamQuery struct {
	EmployeeID int64
	Result     string
	StartDate  string
	EndDate    string
	Skip       int
	Limit      int
}

func (c *Client) MedicalExams(ctx context.Context, q ExamQuery) ([]Exam, error) {
	v := url.Values{}
	if q.EmployeeID != 0 {
		v.Set("employee_id", fmt.Sprint(q.EmployeeID))
	}
	if q.Result != "" {
		v.Set("result", q.Result)
	}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.Skip != 0 {
		v.Set("skip", fmt.Sprint(q.Skip))
	}
	if q.Limit != 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	var out []Exam
	err := c.get(ctx, "/api/v1/medical/exams", v, &out)
	return out, err
}

func (c *Client) MedicalStats(ctx context.Context, targetDate string) (MedicalDayStats, error) {
	v := url.Values{}
	if targetDate != "" {
		v.Set("target_date", targetDate)
	}
	var out MedicalDayStats
	err := c.get(ctx, "/api/v1/medical/stats", v, &out)
	return out, err
}

func (c *Client) SyncExams(ctx context.Context) error {
	return c.postJSON(ctx, "/api/v1/medical/sync-exams", nil, nil)
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	err := c.get(ctx, "/api/v1/users", nil, &out)
	return out, err
}
