package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// StepCounts — распределение шагов job по статусам.
type StepCounts struct {
	Total            int `json:"total"`
	Success          int `json:"success"`
	SkippedUnchanged int `json:"skipped_unchanged"`
	SkippedBlocked   int `json:"skipped_blocked"`
	Failed           int `json:"failed"`
}

// StepResponse — шаг job из API.
type StepResponse struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	ErrorKind  string             `json:"error_kind,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  string             `json:"started_at,omitempty"`
	FinishedAt string             `json:"finished_at,omitempty"`
}

// JobResponse — job из API.
type JobResponse struct {
	ID         string         `json:"id"`
	CaseID     string         `json:"case_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Status     string         `json:"status"`
	Counts     StepCounts     `json:"counts"`
	Steps      []StepResponse `json:"steps,omitempty"`
	StartedAt  string         `json:"started_at,omitempty"`
	FinishedAt string         `json:"finished_at,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// GraphNodeResponse — узел графа из API.
type GraphNodeResponse struct {
	Type       string   `json:"type"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// GraphResponse — граф зависимостей из API.
type GraphResponse struct {
	Nodes []GraphNodeResponse `json:"nodes"`
}

// CancelResponse — результат отмены job дела.
type CancelResponse struct {
	CaseID    string `json:"case_id"`
	Cancelled bool   `json:"cancelled"`
}

// --- Request types ---

// SubmitEventRequest — событие по делу.
type SubmitEventRequest struct {
	CaseID     string         `json:"case_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Async      bool           `json:"async,omitempty"`
}

// AcceptedResponse — подтверждение постановки события в очередь.
type AcceptedResponse struct {
	CaseID    string `json:"case_id"`
	EventType string `json:"event_type"`
	Queued    bool   `json:"queued"`
}

// ListJobsOpts — параметры фильтрации jobs.
type ListJobsOpts struct {
	CaseID string
	Status string
	Limit  int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Casegraph API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Submit синхронный, пересчёт может быть долгим
		},
	}
}

// SubmitEvent отправляет событие по делу и возвращает финализированный job.
func (c *Client) SubmitEvent(req SubmitEventRequest) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/events", req, &job)
	return &job, err
}

// SubmitEventAsync ставит событие в очередь без ожидания пересчёта.
func (c *Client) SubmitEventAsync(req SubmitEventRequest) (*AcceptedResponse, error) {
	req.Async = true
	var accepted AcceptedResponse
	err := c.post("/api/v1/events", req, &accepted)
	return &accepted, err
}

// ListJobs возвращает список jobs с фильтрацией.
func (c *Client) ListJobs(opts ListJobsOpts) ([]JobResponse, error) {
	params := url.Values{}
	if opts.CaseID != "" {
		params.Set("case_id", opts.CaseID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var jobs []JobResponse
	err := c.list("/api/v1/jobs", params, &jobs)
	return jobs, err
}

// GetJob возвращает job по ID вместе с шагами.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// CancelCase отменяет выполняющийся job дела.
func (c *Client) CancelCase(caseID string) (*CancelResponse, error) {
	var result CancelResponse
	err := c.post("/api/v1/cases/"+caseID+"/cancel", nil, &result)
	return &result, err
}

// GetGraph возвращает граф зависимостей.
func (c *Client) GetGraph() (*GraphResponse, error) {
	var g GraphResponse
	err := c.get("/api/v1/graph", &g)
	return &g, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
