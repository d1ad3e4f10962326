// Package client is a Go SDK for the intake API. It wraps each endpoint,
// decodes the response envelope and reproduces the registration, booking
// and dashboard flows of the web frontend.
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
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-success response. Errors holds field messages for a
// 422.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Errors[f], " "))
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Client talks to one API base URL such as http://localhost:8000/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// DemoMode makes Dashboard return sample data when a read fails.
	DemoMode bool
	now      func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func WithDemoMode(on bool) Option {
	return func(c *Client) { c.DemoMode = on }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends body as JSON and decodes the envelope's data into out. Any
// non-2xx status or success=false becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (string, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return "", &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Message, nil
}

func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	var out []Patient
	_, err := c.do(ctx, http.MethodGet, "/patients", nil, &out)
	return out, err
}

func (c *Client) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	var out Patient
	if _, err := c.do(ctx, http.MethodPost, "/patients", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPatient(ctx context.Context, id string) (*Patient, error) {
	var out Patient
	if _, err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePatient sends only the keys present in fields.
func (c *Client) UpdatePatient(ctx context.Context, id string, fields map[string]interface{}) (*Patient, error) {
	var out Patient
	if _, err := c.do(ctx, http.MethodPatch, "/patients/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePatient(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/patients/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) PatientIntakeForms(ctx context.Context, id string) ([]IntakeForm, error) {
	var out []IntakeForm
	_, err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id)+"/intake-forms", nil, &out)
	return out, err
}

func (c *Client) PatientAppointments(ctx context.Context, id string) ([]Appointment, error) {
	var out []Appointment
	_, err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id)+"/appointments", nil, &out)
	return out, err
}

func (c *Client) ListIntakeForms(ctx context.Context) ([]IntakeForm, error) {
	var out []IntakeForm
	_, err := c.do(ctx, http.MethodGet, "/intake-forms", nil, &out)
	return out, err
}

func (c *Client) SubmitIntakeForm(ctx context.Context, f IntakeForm) (*IntakeForm, error) {
	var out IntakeForm
	if _, err := c.do(ctx, http.MethodPost, "/intake-forms", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetIntakeForm(ctx context.Context, id string) (*IntakeForm, error) {
	var out IntakeForm
	if _, err := c.do(ctx, http.MethodGet, "/intake-forms/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIntakeForm sends only the keys present in fields.
func (c *Client) UpdateIntakeForm(ctx context.Context, id string, fields map[string]interface{}) (*IntakeForm, error) {
	var out IntakeForm
	if _, err := c.do(ctx, http.MethodPatch, "/intake-forms/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteIntakeForm(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/intake-forms/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) ProcessIntakeForm(ctx context.Context, id string) (*IntakeForm, error) {
	var out IntakeForm
	if _, err := c.do(ctx, http.MethodPost, "/intake-forms/"+url.PathEscape(id)+"/process", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAppointments filters by scope ("upcoming", "completed") and status
// when they are non-empty.
func (c *Client) ListAppointments(ctx context.Context, scope, status string) ([]Appointment, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	if status != "" {
		q.Set("status", status)
	}
	path := "/appointments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Appointment
	_, err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	var out Appointment
	if _, err := c.do(ctx, http.MethodPost, "/appointments", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	var out Appointment
	if _, err := c.do(ctx, http.MethodGet, "/appointments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, fields map[string]interface{}) (*Appointment, error) {
	var out Appointment
	if _, err := c.do(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var out []Provider
	_, err := c.do(ctx, http.MethodGet, "/providers", nil, &out)
	return out, err
}

func (c *Client) GetProvider(ctx context.Context, id string) (*Provider, error) {
	var out Provider
	if _, err := c.do(ctx, http.MethodGet, "/providers/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
