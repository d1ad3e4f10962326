package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carepoint/intake/internal/platform/telemetry"
)

// HTTPAnalyzer delegates to the inference service's POST /process-form.
type HTTPAnalyzer struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPAnalyzer(baseURL string, timeout time.Duration) *HTTPAnalyzer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAnalyzer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type processFormResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		RiskLevel string `json:"risk_level"`
		Summary   string `json:"summary"`
	} `json:"data"`
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "analysis.http",
		attribute.String("analysis.url", a.baseURL+"/process-form"))
	defer span.End()

	res, err := a.do(ctx, in)
	telemetry.RecordError(span, err)
	if res != nil {
		span.SetAttributes(attribute.String("analysis.risk_level", res.RiskLevel))
	}
	return res, err
}

func (a *HTTPAnalyzer) do(ctx context.Context, in Input) (*Result, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/process-form", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var envelope processFormResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return nil, errors.New("inference service: " + msg)
	}
	if envelope.Data.Summary == "" {
		return nil, errors.New("inference response missing summary")
	}

	level := strings.ToLower(envelope.Data.RiskLevel)
	switch level {
	case RiskHigh, RiskMedium, RiskLow:
	default:
		level = RiskMedium
	}
	return &Result{
		RiskLevel:      level,
		Summary:        envelope.Data.Summary,
		RiskAssessment: FormatRisk(level, nil),
	}, nil
}
