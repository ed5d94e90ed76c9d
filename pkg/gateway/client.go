package gateway

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

	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/model"
)

// Remote controller names.
const (
	ReportController   = "OIGReportSubmissionController"
	TrainingController = "TrainingManagementController"
)

const maxErrorBody = 64 << 10

// Option customises the HTTP client.
type Option func(*HTTPClient)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout bounds every call. Zero disables the per-call deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = timeout
	}
}

// WithHeader adds a static header to every request (for example an auth
// token).
func WithHeader(key, value string) Option {
	return func(c *HTTPClient) {
		c.headers.Set(key, value)
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HTTPClient implements ReportGateway and TrainingGateway over JSON/HTTP.
// Each call is POST {base}/{controller}/{method} with the named parameters
// encoded as a JSON object; the response body is the method's return value.
type HTTPClient struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	headers http.Header
	logger  *zap.Logger
}

var (
	_ ReportGateway   = (*HTTPClient)(nil)
	_ TrainingGateway = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("gateway: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	c := &HTTPClient{
		base:    base,
		client:  http.DefaultClient,
		timeout: 30 * time.Second,
		headers: http.Header{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *HTTPClient) call(ctx context.Context, controller, method string, params any, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("gateway: encode %s.%s params: %w", controller, method, err)
	}

	endpoint := c.base.JoinPath(controller, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gateway: build %s.%s request: %w", controller, method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: %s.%s: %w", controller, method, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("gateway call",
		zap.String("controller", controller),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeRemoteError(resp, controller, method)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: decode %s.%s response: %w", controller, method, err)
	}
	return nil
}

func decodeRemoteError(resp *http.Response, controller, method string) error {
	remote := &RemoteError{Controller: controller, Method: method, StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Body    struct {
			Message string `json:"message"`
		} `json:"body"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		remote.Message = payload.Message
		if remote.Message == "" {
			remote.Message = payload.Body.Message
		}
	}
	if remote.Message == "" {
		remote.Message = strings.TrimSpace(string(raw))
	}
	return remote
}

// SubmitReport sends the serialised report.
func (c *HTTPClient) SubmitReport(ctx context.Context, payloadJSON string) (model.SubmissionResult, error) {
	var result model.SubmissionResult
	err := c.call(ctx, ReportController, "submitOIGReport", map[string]string{"reportDataJson": payloadJSON}, &result)
	return result, err
}

// GetCategoryOptions fetches the category picklist.
func (c *HTTPClient) GetCategoryOptions(ctx context.Context) ([]model.Option, error) {
	var options []model.Option
	err := c.call(ctx, ReportController, "getCategoryOptions", nil, &options)
	return options, err
}

// GetSeverityOptions fetches the severity picklist.
func (c *HTTPClient) GetSeverityOptions(ctx context.Context) ([]model.Option, error) {
	var options []model.Option
	err := c.call(ctx, ReportController, "getSeverityOptions", nil, &options)
	return options, err
}

// GetSubmissionsByAnonymousID looks up submissions by anonymous id.
func (c *HTTPClient) GetSubmissionsByAnonymousID(ctx context.Context, anonymousID string) (model.LookupResult, error) {
	var result model.LookupResult
	err := c.call(ctx, ReportController, "getSubmissionsByAnonymousId", map[string]string{"anonymousId": anonymousID}, &result)
	return result, err
}

// GetSubmissionsByContact looks up submissions by reporter name and email.
func (c *HTTPClient) GetSubmissionsByContact(ctx context.Context, fullName, email string) (model.LookupResult, error) {
	var result model.LookupResult
	err := c.call(ctx, ReportController, "getSubmissionsByContact", map[string]string{
		"fullName": fullName,
		"email":    email,
	}, &result)
	return result, err
}

// GetCourses lists training courses.
func (c *HTTPClient) GetCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := c.call(ctx, TrainingController, "getCourses", nil, &courses)
	return courses, err
}

// GetUpcomingSessions lists upcoming sessions with registration details.
func (c *HTTPClient) GetUpcomingSessions(ctx context.Context) ([]model.SessionDetail, error) {
	var sessions []model.SessionDetail
	err := c.call(ctx, TrainingController, "getUpcomingSessions", nil, &sessions)
	return sessions, err
}

// GetUserAttendance lists the current user's registrations.
func (c *HTTPClient) GetUserAttendance(ctx context.Context) ([]model.Attendance, error) {
	var attendance []model.Attendance
	err := c.call(ctx, TrainingController, "getUserAttendance", nil, &attendance)
	return attendance, err
}

// GetInstructors lists users eligible to instruct.
func (c *HTTPClient) GetInstructors(ctx context.Context) ([]model.Instructor, error) {
	var instructors []model.Instructor
	err := c.call(ctx, TrainingController, "getInstructors", nil, &instructors)
	return instructors, err
}

// CreateCourse creates a course.
func (c *HTTPClient) CreateCourse(ctx context.Context, course NewCourse) (Status, error) {
	var status Status
	err := c.call(ctx, TrainingController, "createCourse", course, &status)
	return status, err
}

// CreateSession schedules a session.
func (c *HTTPClient) CreateSession(ctx context.Context, session NewSession) (Status, error) {
	var status Status
	err := c.call(ctx, TrainingController, "createSession", session, &status)
	return status, err
}

// RegisterForSession registers the current user.
func (c *HTTPClient) RegisterForSession(ctx context.Context, sessionID string) (Status, error) {
	var status Status
	err := c.call(ctx, TrainingController, "registerForSession", map[string]string{"sessionId": sessionID}, &status)
	return status, err
}

// CancelRegistration cancels the current user's registration.
func (c *HTTPClient) CancelRegistration(ctx context.Context, sessionID string) (Status, error) {
	var status Status
	err := c.call(ctx, TrainingController, "cancelRegistration", map[string]string{"sessionId": sessionID}, &status)
	return status, err
}
