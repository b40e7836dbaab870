package official

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

// SvemoClient fetches heat-level results from the federation API. Requests
// are rate limited with a token bucket so imports stay under the API quota.
type SvemoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewSvemoClient creates a federation API client. An empty baseURL yields a
// client whose calls fail fast, so callers can treat heat data as optional.
func NewSvemoClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *SvemoClient {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &SvemoClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// Enabled reports whether the client has a configured endpoint.
func (c *SvemoClient) Enabled() bool {
	return c.baseURL != ""
}

type svemoHeat struct {
	HeatNumber int `json:"heat_number"`
	Results    []struct {
		RiderID  string `json:"rider_id"`
		Status   string `json:"status"`
		Position int    `json:"position"`
		Points   int    `json:"points"`
		Bonus    int    `json:"bonus"`
	} `json:"results"`
}

type svemoMatchResponse struct {
	Heats []svemoHeat `json:"heats"`
}

// FetchHeats returns a fixture's official heat results keyed by heat number.
func (c *SvemoClient) FetchHeats(ctx context.Context, homeTeam, awayTeam string, date time.Time) (map[int][]speedway.Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("federation API not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("home", homeTeam)
	params.Set("away", awayTeam)
	params.Set("date", date.Format("2006-01-02"))
	u := c.baseURL + "/api/speedway/heats?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch heats: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch heats: status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var parsed svemoMatchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse heats response: %w", err)
	}

	out := make(map[int][]speedway.Result, len(parsed.Heats))
	for _, h := range parsed.Heats {
		results := make([]speedway.Result, 0, len(h.Results))
		for _, r := range h.Results {
			status := speedway.ResultCompleted
			if r.Status == "excluded" {
				status = speedway.ResultExcluded
			}
			results = append(results, speedway.Result{
				RiderID:     r.RiderID,
				Status:      status,
				Position:    r.Position,
				Points:      r.Points,
				BonusPoints: r.Bonus,
			})
		}
		out[h.HeatNumber] = results
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
