package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ocrapi/internal/config"
)

// httpEngine talks to the recognition engine's REST API. Outbound requests are
// traced via an otelhttp transport.
type httpEngine struct {
	baseURL        string
	apiKey         string
	notifyQueueURL string
	client         *http.Client
}

// NewHTTPEngine builds an Engine over the configured REST endpoint.
func NewHTTPEngine(cfg config.EngineConfig) (Engine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("engine base URL is required")
	}
	return &httpEngine{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		notifyQueueURL: cfg.NotifyQueueURL,
		client:         &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}, nil
}

type startAnalysisRequest struct {
	Source       Source   `json:"source"`
	JobTag       string   `json:"jobTag"`
	FeatureTypes []string `json:"featureTypes"`
	Notification *struct {
		QueueURL string `json:"queueUrl"`
	} `json:"notificationChannel,omitempty"`
}

type startAnalysisResponse struct {
	JobID string `json:"jobId"`
}

// resultPage is one page of the engine's paginated result response.
type resultPage struct {
	JobID     string  `json:"jobId"`
	JobStatus string  `json:"jobStatus"`
	Pages     int     `json:"pages"`
	Blocks    []Block `json:"blocks"`
	NextToken string  `json:"nextToken,omitempty"`
}

func (e *httpEngine) StartAnalysis(ctx context.Context, src Source) (string, error) {
	reqBody := startAnalysisRequest{
		Source:       src,
		JobTag:       src.JobTag,
		FeatureTypes: []string{"LAYOUT"},
	}
	if e.notifyQueueURL != "" {
		reqBody.Notification = &struct {
			QueueURL string `json:"queueUrl"`
		}{QueueURL: e.notifyQueueURL}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode analysis request: %w", err)
	}

	var resp startAnalysisResponse
	if err := e.do(ctx, http.MethodPost, e.baseURL+"/v1/analyses", bytes.NewReader(payload), &resp); err != nil {
		return "", fmt.Errorf("start analysis: %w", err)
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("start analysis: engine returned no job id")
	}
	return resp.JobID, nil
}

// Result follows the engine's next-token pagination until the full block set
// has been retrieved.
func (e *httpEngine) Result(ctx context.Context, jobID string) (*Result, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job id is required")
	}

	result := &Result{JobID: jobID}
	nextToken := ""
	for {
		u := fmt.Sprintf("%s/v1/analyses/%s/result", e.baseURL, url.PathEscape(jobID))
		if nextToken != "" {
			u += "?nextToken=" + url.QueryEscape(nextToken)
		}

		var page resultPage
		if err := e.do(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("fetch result page: %w", err)
		}

		result.JobStatus = page.JobStatus
		if page.Pages > 0 {
			result.Pages = page.Pages
		}
		result.Blocks = append(result.Blocks, page.Blocks...)

		if page.NextToken == "" {
			return result, nil
		}
		nextToken = page.NextToken
	}
}

func (e *httpEngine) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("engine responded %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
