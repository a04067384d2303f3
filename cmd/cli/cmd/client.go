package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"driveplane/pkg/api"
)

// DriveClient handles API calls to the driveplane controller.
type DriveClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewDriveClient creates a new client with the given base URL and token.
func NewDriveClient(baseURL, token string) *DriveClient {
	return &DriveClient{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	// Code is the engine error code, e.g. NotCurrentTask.
	Code string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do sends a JSON request and decodes a 2xx JSON response into out.
func (c *DriveClient) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Token))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateAccount sends POST /accounts. The client token must be the system secret.
func (c *DriveClient) CreateAccount(req api.CreateAccountRequest) (*api.CreateAccountResponse, error) {
	var result api.CreateAccountResponse
	if err := c.do(http.MethodPost, "/accounts", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTiers sends GET /tiers.
func (c *DriveClient) ListTiers() ([]api.TierResponse, error) {
	var result []api.TierResponse
	if err := c.do(http.MethodGet, "/tiers", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// PutTier sends PUT /tiers/{name}.
func (c *DriveClient) PutTier(name string, req api.TierRequest) (*api.TierResponse, error) {
	var result api.TierResponse
	if err := c.do(http.MethodPut, "/tiers/"+name, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProduct sends POST /products.
func (c *DriveClient) CreateProduct(req api.CreateProductRequest) (*api.ProductResponse, error) {
	var result api.ProductResponse
	if err := c.do(http.MethodPost, "/products", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartSession sends POST /sessions.
func (c *DriveClient) StartSession(req api.StartSessionRequest) (*api.SessionResponse, error) {
	var result api.SessionResponse
	if err := c.do(http.MethodPost, "/sessions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSession sends GET /sessions/{id}.
func (c *DriveClient) GetSession(sessionID string) (*api.SessionResponse, error) {
	var result api.SessionResponse
	if err := c.do(http.MethodGet, "/sessions/"+sessionID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProgress sends GET /sessions/{id}/progress.
func (c *DriveClient) GetProgress(sessionID string) (*api.Progress, error) {
	var result api.Progress
	if err := c.do(http.MethodGet, "/sessions/"+sessionID+"/progress", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLedger sends GET /sessions/{id}/ledger.
func (c *DriveClient) GetLedger(sessionID string) (*api.LedgerResponse, error) {
	var result api.LedgerResponse
	if err := c.do(http.MethodGet, "/sessions/"+sessionID+"/ledger", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetSession sends POST /sessions/{id}/reset.
func (c *DriveClient) ResetSession(sessionID string, req api.VersionRequest) (*api.SessionResponse, error) {
	var result api.SessionResponse
	if err := c.do(http.MethodPost, "/sessions/"+sessionID+"/reset", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PreviewCombo sends POST /sessions/{id}/combos/preview.
func (c *DriveClient) PreviewCombo(sessionID string, req api.ComboRequest) (*api.PreviewResponse, error) {
	var result api.PreviewResponse
	if err := c.do(http.MethodPost, "/sessions/"+sessionID+"/combos/preview", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InsertCombo sends POST /sessions/{id}/combos.
func (c *DriveClient) InsertCombo(sessionID string, req api.ComboRequest) (*api.InsertComboResponse, error) {
	var result api.InsertComboResponse
	if err := c.do(http.MethodPost, "/sessions/"+sessionID+"/combos", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BeginPurchase sends POST /tasks/{id}/purchase.
func (c *DriveClient) BeginPurchase(taskID string, req api.VersionRequest) (*api.BeginPurchaseResponse, error) {
	var result api.BeginPurchaseResponse
	if err := c.do(http.MethodPost, "/tasks/"+taskID+"/purchase", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CompleteTask sends POST /tasks/{id}/complete.
func (c *DriveClient) CompleteTask(taskID string, req api.CompleteTaskRequest) (*api.CompleteTaskResponse, error) {
	var result api.CompleteTaskResponse
	if err := c.do(http.MethodPost, "/tasks/"+taskID+"/complete", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitRating sends POST /tasks/{id}/rating.
func (c *DriveClient) SubmitRating(taskID string, req api.RatingRequest) (*api.RatingResponse, error) {
	var result api.RatingResponse
	if err := c.do(http.MethodPost, "/tasks/"+taskID+"/rating", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
