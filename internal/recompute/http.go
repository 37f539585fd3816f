package recompute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPRecomputer — продакшен-реализация Recomputer поверх HTTP.
//
// Каждый тип узла объявляет в конфигурации endpoint своего
// recompute-сервиса (matcher, экстрактор keypoints, генератор drafts).
// Протокол:
//
//	POST {endpoint}          body: {"case_id", "inputs"} → {"output", "metrics"} | {"error"}
//	GET  {endpoint}/latest?case_id=...  → {"output"} | 404
type HTTPRecomputer struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPRecomputer создаёт recomputer для endpoint-а.
func NewHTTPRecomputer(endpoint string) *HTTPRecomputer {
	return &HTTPRecomputer{
		endpoint: endpoint,
		httpClient: &http.Client{
			// Общий дедлайн задаёт контекст шага; этот таймаут —
			// страховка от recompute-сервиса, не закрывающего соединение.
			Timeout: 5 * time.Minute,
		},
	}
}

// recomputeRequest — тело запроса пересчёта.
type recomputeRequest struct {
	CaseID string         `json:"case_id"`
	Inputs map[string]any `json:"inputs,omitempty"`
}

// recomputeResponse — ответ recompute-сервиса.
type recomputeResponse struct {
	Output  map[string]any     `json:"output,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Recompute отправляет входы recompute-сервису и возвращает новый артефакт.
func (r *HTTPRecomputer) Recompute(ctx context.Context, caseID string, inputs map[string]any) (*Result, error) {
	body, err := json.Marshal(recomputeRequest{CaseID: caseID, Inputs: inputs})
	if err != nil {
		return nil, fmt.Errorf("marshal recompute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build recompute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recompute service: %w", err)
	}
	defer resp.Body.Close()

	var parsed recomputeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode recompute response (status %d): %w", resp.StatusCode, err)
	}

	// Доменная ошибка сервиса — текст сохраняется дословно
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRecomputeFailed, parsed.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: recompute service returned status %d", ErrRecomputeFailed, resp.StatusCode)
	}

	return &Result{Output: parsed.Output, Metrics: parsed.Metrics}, nil
}

// latestResponse — ответ на запрос текущего артефакта.
type latestResponse struct {
	Output map[string]any `json:"output,omitempty"`
}

// Latest возвращает текущий артефакт узла из recompute-сервиса.
func (r *HTTPRecomputer) Latest(ctx context.Context, caseID string) (map[string]any, error) {
	u := r.endpoint + "/latest?case_id=" + url.QueryEscape(caseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build latest request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recompute service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: case %s", ErrArtifactNotFound, caseID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("latest returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode latest response: %w", err)
	}
	return parsed.Output, nil
}
