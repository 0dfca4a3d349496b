// Package upstream talks to the exam-supervision backend. The gateway owns
// no business state: every read is a fresh snapshot and every write is
// relayed verbatim, with the backend's verdict surfaced to the caller.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BenAmorMed/ExamSupervisor/internal/models"
	"github.com/BenAmorMed/ExamSupervisor/pkg/config"
	appErrors "github.com/BenAmorMed/ExamSupervisor/pkg/errors"
)

// MetricsObserver receives timing for upstream calls.
type MetricsObserver interface {
	ObserveUpstreamRequest(operation string, status int, duration time.Duration)
}

// Client is the HTTP client for the backend's teacher API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics MetricsObserver
}

// New constructs a Client. The metrics observer may be nil.
func New(cfg config.UpstreamConfig, logger *zap.Logger, metrics MetricsObserver) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// SessionPage mirrors the backend's Spring-style page envelope.
type SessionPage struct {
	Content       []models.RawSession `json:"content"`
	TotalPages    int                 `json:"totalPages"`
	TotalElements int                 `json:"totalElements"`
	Number        int                 `json:"number"`
	Size          int                 `json:"size"`
}

// Login forwards credentials to the backend. Credential verification is
// entirely upstream; a 401 is returned as invalid credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*models.RawTeacher, error) {
	payload := map[string]string{"email": email, "password": password}
	var teacher models.RawTeacher
	if err := c.do(ctx, "login", http.MethodPost, "/enseignant/login", payload, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Teacher fetches the teacher profile, including grade and subjects.
func (c *Client) Teacher(ctx context.Context, id int64) (*models.RawTeacher, error) {
	var teacher models.RawTeacher
	if err := c.do(ctx, "teacher", http.MethodGet, fmt.Sprintf("/enseignant/%d", id), nil, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Sessions fetches one page of all exam sessions. Pages are zero-indexed on
// the backend.
func (c *Client) Sessions(ctx context.Context, page, size int) (*SessionPage, error) {
	var result SessionPage
	path := fmt.Sprintf("/enseignant/sessions?page=%d&size=%d", page, size)
	if err := c.do(ctx, "sessions", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MySessions fetches the sessions the teacher currently supervises.
func (c *Client) MySessions(ctx context.Context, teacherID int64) ([]models.RawSession, error) {
	var sessions []models.RawSession
	path := fmt.Sprintf("/enseignant/%d/mesSeances", teacherID)
	if err := c.do(ctx, "my_sessions", http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SubjectSessions fetches the sessions covering a subject the teacher
// teaches.
func (c *Client) SubjectSessions(ctx context.Context, teacherID int64) ([]models.RawSession, error) {
	var sessions []models.RawSession
	path := fmt.Sprintf("/enseignant/%d/sessionsWithAllMatieres", teacherID)
	if err := c.do(ctx, "subject_sessions", http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SelectSession asks the backend to assign the teacher to the session. The
// backend enforces validity (capacity, conflicts, charge) and reports a 409
// when the session was concurrently modified.
func (c *Client) SelectSession(ctx context.Context, teacherID, sessionID int64) error {
	path := fmt.Sprintf("/enseignant/%d/choisir/%d", teacherID, sessionID)
	return c.do(ctx, "select_session", http.MethodPost, path, nil, nil)
}

// CancelSession withdraws the teacher from the session.
func (c *Client) CancelSession(ctx context.Context, teacherID, sessionID int64) error {
	path := fmt.Sprintf("/enseignant/%d/annuler/%d", teacherID, sessionID)
	return c.do(ctx, "cancel_session", http.MethodPost, path, nil, nil)
}

// AutoAssign triggers the backend's automatic assignment for the teacher.
// The algorithm is opaque to the gateway.
func (c *Client) AutoAssign(ctx context.Context, teacherID int64) error {
	path := fmt.Sprintf("/enseignant/assign-auto/%d", teacherID)
	return c.do(ctx, "auto_assign", http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		if c.metrics != nil {
			c.metrics.ObserveUpstreamRequest(operation, 0, duration)
		}
		c.logger.Warn("upstream request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "upstream unreachable")
	}
	defer resp.Body.Close() //nolint:errcheck

	if c.metrics != nil {
		c.metrics.ObserveUpstreamRequest(operation, resp.StatusCode, duration)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return appErrors.Upstream(resp.StatusCode, readErrorMessage(resp.Body), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode upstream response")
	}
	return nil
}

// readErrorMessage extracts a human-readable message from an upstream error
// body, which is either a plain string or a {message} object.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(trimmed, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
		return ""
	}

	var quoted string
	if json.Unmarshal(trimmed, &quoted) == nil {
		return quoted
	}
	return string(trimmed)
}
