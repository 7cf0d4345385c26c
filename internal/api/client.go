package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issuetrack/internal/api/dto"
	"github.com/spec-kit/issuetrack/internal/config"
	"github.com/spec-kit/issuetrack/internal/domain"
	"github.com/spec-kit/issuetrack/internal/observability"
	"github.com/spec-kit/issuetrack/pkg/util"
)

// Backend route paths, relative to the configured base URL.
const (
	pathLogin    = "/api/auth/login"
	pathRegister = "/api/auth/register"
	pathIssues   = "/api/issues"
	pathExport   = "/api/issues/admin/export/issues"
)

// Client is the REST surface of the issue tracker backend. The backend
// performs its own authorization on every call; this layer only moves bytes
// and classifies failures.
type Client interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) error
	ListIssues(ctx context.Context, token string) ([]domain.Issue, error)
	CreateIssue(ctx context.Context, token string, req dto.CreateIssueRequest) (*domain.Issue, error)
	UpdateIssue(ctx context.Context, token, id string, req dto.UpdateIssueRequest) (*domain.Issue, error)
	DeleteIssue(ctx context.Context, token, id string) error
	ExportIssuesCSV(ctx context.Context, token string) ([]byte, error)
}

type restClient struct {
	http    *fiber.Client
	baseURL string
	timeout time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

// ClientDependencies bundles collaborators for the REST client.
type ClientDependencies struct {
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewClient instantiates the REST client.
func NewClient(cfg config.APIConfig, deps ClientDependencies) Client {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &restClient{
		http:    &fiber.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout(),
		metrics: deps.Metrics,
		logger:  logger,
	}
}

func (c *restClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	agent := c.http.Post(c.baseURL + pathLogin).JSON(req)
	code, body, err := c.do(ctx, agent, pathLogin, fiber.MethodPost)
	if err != nil {
		return nil, err
	}
	if !success(code) {
		return nil, c.serverError(pathLogin, fiber.MethodPost, code, body)
	}

	var res dto.LoginResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, util.NewDecodeError("malformed login response", err)
	}
	if res.Token == "" {
		return nil, util.NewDecodeError("login response missing token", nil)
	}
	return &res, nil
}

func (c *restClient) Register(ctx context.Context, req dto.RegisterRequest) error {
	agent := c.http.Post(c.baseURL + pathRegister).JSON(req)
	code, body, err := c.do(ctx, agent, pathRegister, fiber.MethodPost)
	if err != nil {
		return err
	}
	if !success(code) {
		return c.serverError(pathRegister, fiber.MethodPost, code, body)
	}
	return nil
}

func (c *restClient) ListIssues(ctx context.Context, token string) ([]domain.Issue, error) {
	agent := c.http.Get(c.baseURL + pathIssues)
	agent.Set(fiber.HeaderAuthorization, bearer(token))
	code, body, err := c.do(ctx, agent, pathIssues, fiber.MethodGet)
	if err != nil {
		return nil, err
	}
	if !success(code) {
		return nil, c.serverError(pathIssues, fiber.MethodGet, code, body)
	}

	var records []dto.IssueResponse
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, util.NewDecodeError("malformed issue list", err)
	}
	issues := make([]domain.Issue, 0, len(records))
	for _, record := range records {
		issues = append(issues, record.ToDomain())
	}
	return issues, nil
}

func (c *restClient) CreateIssue(ctx context.Context, token string, req dto.CreateIssueRequest) (*domain.Issue, error) {
	agent := c.http.Post(c.baseURL + pathIssues).JSON(req)
	agent.Set(fiber.HeaderAuthorization, bearer(token))
	code, body, err := c.do(ctx, agent, pathIssues, fiber.MethodPost)
	if err != nil {
		return nil, err
	}
	if !success(code) {
		return nil, c.serverError(pathIssues, fiber.MethodPost, code, body)
	}
	return decodeIssue(body)
}

func (c *restClient) UpdateIssue(ctx context.Context, token, id string, req dto.UpdateIssueRequest) (*domain.Issue, error) {
	path := pathIssues + "/" + id
	agent := c.http.Put(c.baseURL + path).JSON(req)
	agent.Set(fiber.HeaderAuthorization, bearer(token))
	code, body, err := c.do(ctx, agent, pathIssues, fiber.MethodPut)
	if err != nil {
		return nil, err
	}
	if !success(code) {
		return nil, c.serverError(pathIssues, fiber.MethodPut, code, body)
	}
	return decodeIssue(body)
}

func (c *restClient) DeleteIssue(ctx context.Context, token, id string) error {
	path := pathIssues + "/" + id
	agent := c.http.Delete(c.baseURL + path)
	agent.Set(fiber.HeaderAuthorization, bearer(token))
	code, body, err := c.do(ctx, agent, pathIssues, fiber.MethodDelete)
	if err != nil {
		return err
	}
	if !success(code) {
		return c.serverError(pathIssues, fiber.MethodDelete, code, body)
	}
	return nil
}

func (c *restClient) ExportIssuesCSV(ctx context.Context, token string) ([]byte, error) {
	agent := c.http.Get(c.baseURL + pathExport)
	agent.Set(fiber.HeaderAuthorization, bearer(token))
	agent.Set(fiber.HeaderAccept, "text/csv")
	code, body, err := c.do(ctx, agent, pathExport, fiber.MethodGet)
	if err != nil {
		return nil, err
	}
	if !success(code) {
		return nil, c.serverError(pathExport, fiber.MethodGet, code, body)
	}
	return body, nil
}

// do finalizes and sends the request, recording metrics either way. The
// request id header lets client debug logs be correlated with backend logs.
func (c *restClient) do(ctx context.Context, agent *fiber.Agent, path, method string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, util.NewTransportError("request aborted", err)
	}

	agent.Set(fiber.HeaderXRequestID, uuid.NewString())
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	start := time.Now()
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.metrics.RecordError(path, method, util.CodeTransport)
		return 0, nil, util.NewTransportError("request failed", errs[0])
	}

	duration := time.Since(start)
	c.metrics.RecordRequest(path, method, code, duration)
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", code),
		zap.Duration("duration", duration),
	)
	return code, body, nil
}

// serverError classifies a non-2xx response: SERVER_REJECTED when the backend
// supplied a message, TRANSPORT otherwise.
func (c *restClient) serverError(path, method string, code int, body []byte) error {
	var payload dto.MessageResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		c.metrics.RecordError(path, method, util.CodeServerRejected)
		return util.NewServerRejected(payload.Message, code)
	}
	c.metrics.RecordError(path, method, util.CodeTransport)
	return util.NewClientError(util.CodeTransport, fmt.Sprintf("unexpected status %d", code), code, nil)
}

func decodeIssue(body []byte) (*domain.Issue, error) {
	var record dto.IssueResponse
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, util.NewDecodeError("malformed issue record", err)
	}
	issue := record.ToDomain()
	return &issue, nil
}

func bearer(token string) string {
	return "Bearer " + token
}

func success(code int) bool {
	return code >= 200 && code < 300
}
