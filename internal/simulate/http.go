package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/glicko/internal/domain/types"
	"github.com/okian/glicko/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// decodeResponse checks the status and decodes the JSON body into v.
func decodeResponse(resp *http.Response, want int, v any) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

// registerPlayers creates every contender on the service.
func registerPlayers(ctx context.Context, client *HTTPClient, players []contender, stats *Stats) error {
	for _, p := range players {
		resp, err := client.Post(ctx, "/players", map[string]string{"id": p.ID})
		if err != nil {
			return fmt.Errorf("register %s: %w", p.ID, err)
		}
		if err := decodeResponse(resp, http.StatusCreated, nil); err != nil {
			return fmt.Errorf("register %s: %w", p.ID, err)
		}
		stats.PlayersRegistered++
	}
	logger.Get().Info(ctx, "players registered", logger.Int("count", stats.PlayersRegistered))
	return nil
}

// submitGames submits games concurrently using a worker pool.
func submitGames(ctx context.Context, config *Config, client *HTTPClient, games []Game, stats *Stats) {
	log := logger.Get().Named("submit")

	var (
		accepted  int64
		duplicate int64
		failed    int64
		submitted int64
	)

	var reportMu sync.Mutex
	lastReport := time.Now()

	gameChan := make(chan Game, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for game := range gameChan {
				if ctx.Err() != nil {
					return
				}
				switch submitSingleGame(ctx, client, game) {
				case "accepted":
					atomic.AddInt64(&accepted, 1)
				case "duplicate":
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				total := atomic.AddInt64(&submitted, 1)

				if !config.Verbose {
					continue
				}
				reportMu.Lock()
				if time.Since(lastReport) >= progressInterval {
					lastReport = time.Now()
					log.Info(ctx, "progress",
						logger.Int("submitted", int(total)),
						logger.Int("total", len(games)),
						logger.Int("failed", int(atomic.LoadInt64(&failed))))
				}
				reportMu.Unlock()
			}
		}()
	}

	go func() {
		defer close(gameChan)
		for _, game := range games {
			select {
			case <-ctx.Done():
				return
			case gameChan <- game:
			}
		}
	}()

	wg.Wait()

	stats.GamesSubmitted += int(atomic.LoadInt64(&submitted))
	stats.GamesAccepted += int(atomic.LoadInt64(&accepted))
	stats.GamesDuplicate += int(atomic.LoadInt64(&duplicate))
	stats.GamesFailed += int(atomic.LoadInt64(&failed))
}

// submitSingleGame submits a single game and classifies the response.
func submitSingleGame(ctx context.Context, client *HTTPClient, game Game) string {
	resp, err := client.Post(ctx, "/results", game)
	if err != nil {
		return "failed"
	}

	var ack AckResponse
	switch resp.StatusCode {
	case http.StatusAccepted:
		_ = decodeResponse(resp, http.StatusAccepted, &ack)
		return "accepted"
	case http.StatusOK:
		_ = decodeResponse(resp, http.StatusOK, &ack)
		return "duplicate"
	default:
		_ = decodeResponse(resp, resp.StatusCode, nil)
		return "failed"
	}
}

// closePeriod asks the service to rate the open period.
func closePeriod(ctx context.Context, client *HTTPClient) (types.PeriodSummary, error) {
	var summary types.PeriodSummary
	resp, err := client.Post(ctx, "/periods/close", nil)
	if err != nil {
		return summary, fmt.Errorf("close period: %w", err)
	}
	if err := decodeResponse(resp, http.StatusOK, &summary); err != nil {
		return summary, fmt.Errorf("close period: %w", err)
	}
	return summary, nil
}

// fetchPlayers reads the current rating of every contender.
func fetchPlayers(ctx context.Context, client *HTTPClient, players []contender) ([]types.Player, error) {
	out := make([]types.Player, 0, len(players))
	for _, p := range players {
		resp, err := client.Get(ctx, "/players/"+p.ID)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", p.ID, err)
		}
		var player types.Player
		if err := decodeResponse(resp, http.StatusOK, &player); err != nil {
			return nil, fmt.Errorf("get %s: %w", p.ID, err)
		}
		out = append(out, player)
	}
	return out, nil
}
