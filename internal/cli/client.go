package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"todo-me/internal/domain"
)

// APIClient handles communication with the todo-me API.
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a new API client.
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an API error response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d) %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// apiEnvelope is the uniform response wrapper the server sends.
type apiEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	UndoToken string          `json:"undo_token"`
	Message   string          `json:"message"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *APIClient) doRequest(ctx context.Context, method, endpoint string, body interface{}) (*apiEnvelope, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	fullURL, err := url.JoinPath(c.BaseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to join URL path: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 400 || !envelope.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		if envelope.Error != nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}
	return &envelope, nil
}

func decodeData(envelope *apiEnvelope, target interface{}) error {
	if len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, target)
}

// Login authenticates and returns the access token.
func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", domain.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeData(envelope, &data); err != nil {
		return "", err
	}
	return data.AccessToken, nil
}

// Register creates an account.
func (c *APIClient) Register(ctx context.Context, email, name, password string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", domain.RegisterRequest{
		Email:    email,
		Name:     name,
		Password: password,
	})
	return err
}

// ListTasks fetches the user's tasks.
func (c *APIClient) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	envelope, err := c.doRequest(ctx, http.MethodGet, "/api/tasks", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Tasks []*domain.Task `json:"tasks"`
	}
	if err := decodeData(envelope, &data); err != nil {
		return nil, err
	}
	return data.Tasks, nil
}

// CreateTask creates a task.
func (c *APIClient) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.Task, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/tasks", req)
	if err != nil {
		return nil, err
	}
	var task domain.Task
	if err := decodeData(envelope, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask patches a task and returns the updated task plus the undo
// token covering the change.
func (c *APIClient) UpdateTask(ctx context.Context, taskID string, req domain.UpdateTaskRequest) (*domain.Task, string, error) {
	envelope, err := c.doRequest(ctx, http.MethodPatch, "/api/tasks/"+taskID, req)
	if err != nil {
		return nil, "", err
	}
	var task domain.Task
	if err := decodeData(envelope, &task); err != nil {
		return nil, "", err
	}
	return &task, envelope.UndoToken, nil
}

// DeleteTask deletes a task and returns the undo token.
func (c *APIClient) DeleteTask(ctx context.Context, taskID string) (string, error) {
	envelope, err := c.doRequest(ctx, http.MethodDelete, "/api/tasks/"+taskID, nil)
	if err != nil {
		return "", err
	}
	return envelope.UndoToken, nil
}

// SetTaskStatus changes a task's status and returns the undo token.
func (c *APIClient) SetTaskStatus(ctx context.Context, taskID string, status domain.TaskStatus) (*domain.Task, string, error) {
	envelope, err := c.doRequest(ctx, http.MethodPut, "/api/tasks/"+taskID+"/status", map[string]interface{}{
		"status": status,
	})
	if err != nil {
		return nil, "", err
	}
	var task domain.Task
	if err := decodeData(envelope, &task); err != nil {
		return nil, "", err
	}
	return &task, envelope.UndoToken, nil
}

// RescheduleTask changes a task's schedule and returns the undo token.
func (c *APIClient) RescheduleTask(ctx context.Context, taskID string, req domain.RescheduleRequest) (*domain.Task, string, error) {
	envelope, err := c.doRequest(ctx, http.MethodPut, "/api/tasks/"+taskID+"/schedule", req)
	if err != nil {
		return nil, "", err
	}
	var task domain.Task
	if err := decodeData(envelope, &task); err != nil {
		return nil, "", err
	}
	return &task, envelope.UndoToken, nil
}

// ListProjects fetches the user's projects.
func (c *APIClient) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	envelope, err := c.doRequest(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Projects []*domain.Project `json:"projects"`
	}
	if err := decodeData(envelope, &data); err != nil {
		return nil, err
	}
	return data.Projects, nil
}

// CreateProject creates a project.
func (c *APIClient) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/projects", req)
	if err != nil {
		return nil, err
	}
	var project domain.Project
	if err := decodeData(envelope, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ArchiveProject archives or unarchives a project.
func (c *APIClient) ArchiveProject(ctx context.Context, projectID string, unarchive bool) (*domain.Project, string, error) {
	endpoint := "/api/projects/" + projectID + "/archive"
	if unarchive {
		endpoint = "/api/projects/" + projectID + "/unarchive"
	}
	envelope, err := c.doRequest(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	var project domain.Project
	if err := decodeData(envelope, &project); err != nil {
		return nil, "", err
	}
	return &project, envelope.UndoToken, nil
}

// DeleteProject deletes a project and returns the undo token.
func (c *APIClient) DeleteProject(ctx context.Context, projectID string) (string, error) {
	envelope, err := c.doRequest(ctx, http.MethodDelete, "/api/projects/"+projectID, nil)
	if err != nil {
		return "", err
	}
	return envelope.UndoToken, nil
}

// Undo redeems an undo token of any kind.
func (c *APIClient) Undo(ctx context.Context, token string) (json.RawMessage, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/undo/"+token, nil)
	if err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ExecuteBatch runs a batch of task operations.
func (c *APIClient) ExecuteBatch(ctx context.Context, ops []domain.BatchOperation, atomic bool) (*domain.BatchResult, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/batch", map[string]interface{}{
		"operations": ops,
		"atomic":     atomic,
	})
	if err != nil {
		return nil, err
	}
	var result domain.BatchResult
	if err := decodeData(envelope, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTags fetches the user's tags.
func (c *APIClient) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	envelope, err := c.doRequest(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Tags []*domain.Tag `json:"tags"`
	}
	if err := decodeData(envelope, &data); err != nil {
		return nil, err
	}
	return data.Tags, nil
}

// CreateTag creates a tag.
func (c *APIClient) CreateTag(ctx context.Context, req domain.CreateTagRequest) (*domain.Tag, error) {
	envelope, err := c.doRequest(ctx, http.MethodPost, "/api/tags", req)
	if err != nil {
		return nil, err
	}
	var tag domain.Tag
	if err := decodeData(envelope, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag deletes a tag.
func (c *APIClient) DeleteTag(ctx context.Context, tagID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/tags/"+tagID, nil)
	return err
}
