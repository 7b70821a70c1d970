package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"pickem-app/logging"
)

const (
	defaultOddsBaseURL = "https://api.the-odds-api.com"
	oddsSportKey       = "americanfootball_nfl"
	maxFeedBody        = 4 << 20
)

// ErrFeedUnavailable marks transport and 5xx/429 failures worth retrying later
var ErrFeedUnavailable = crerr.New("odds feed unavailable")

// OddsClientConfig configures the-odds-api client
type OddsClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	DaysFrom   int
	Regions    string
	Timeout    time.Duration
}

// OddsClient fetches scores and spreads from the-odds-api
type OddsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	daysFrom   int
	regions    string
	logger     *logging.Logger
}

func NewOddsClient(cfg OddsClientConfig) *OddsClient {
	// Work on a copy; the caller's client may be shared
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		clientCopy := *cfg.HTTPClient
		httpClient = &clientCopy
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOddsBaseURL
	}
	daysFrom := cfg.DaysFrom
	if daysFrom <= 0 {
		daysFrom = 3
	}
	regions := cfg.Regions
	if regions == "" {
		regions = "us"
	}

	return &OddsClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		daysFrom:   daysFrom,
		regions:    regions,
		logger:     logging.WithPrefix("odds_client"),
	}
}

type oddsEvent struct {
	ID           string          `json:"id"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime string          `json:"commence_time"`
	Bookmakers   []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string  `json:"name"`
	Point float64 `json:"point"`
	Price float64 `json:"price"`
}

// FetchScores returns recent and live games from the scores endpoint
func (c *OddsClient) FetchScores(ctx context.Context) ([]ScoreRow, error) {
	query := url.Values{}
	query.Set("daysFrom", strconv.Itoa(c.daysFrom))
	query.Set("dateFormat", "iso")

	var rows []ScoreRow
	if err := c.getJSON(ctx, "scores", query, &rows); err != nil {
		return nil, crerr.Wrap(err, "fetch scores")
	}
	return rows, nil
}

// FetchSpreads returns the spread market flattened to one row per outcome
func (c *OddsClient) FetchSpreads(ctx context.Context) ([]OddsRow, error) {
	query := url.Values{}
	query.Set("regions", c.regions)
	query.Set("markets", "spreads")
	query.Set("oddsFormat", "american")
	query.Set("dateFormat", "iso")

	var events []oddsEvent
	if err := c.getJSON(ctx, "odds", query, &events); err != nil {
		return nil, crerr.Wrap(err, "fetch odds")
	}
	return flattenOdds(events), nil
}

func flattenOdds(events []oddsEvent) []OddsRow {
	var rows []OddsRow
	for _, event := range events {
		for _, bookmaker := range event.Bookmakers {
			for _, market := range bookmaker.Markets {
				if market.Key != "spreads" {
					continue
				}
				for _, outcome := range market.Outcomes {
					rows = append(rows, OddsRow{
						ExternalID:   event.ID,
						HomeTeam:     event.HomeTeam,
						AwayTeam:     event.AwayTeam,
						CommenceTime: event.CommenceTime,
						Bookmaker:    bookmaker.Key,
						Team:         outcome.Name,
						Point:        outcome.Point,
						Price:        outcome.Price,
					})
				}
			}
		}
	}
	return rows
}

func (c *OddsClient) getJSON(ctx context.Context, endpoint string, query url.Values, target any) error {
	if c.apiKey == "" {
		return crerr.New("odds api key is not configured")
	}
	query.Set("apiKey", c.apiKey)

	fullURL := fmt.Sprintf("%s/v4/sports/%s/%s?%s", c.baseURL, oddsSportKey, endpoint, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Newf("send request: %s", c.redact(err.Error())), ErrFeedUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "read response body"), ErrFeedUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := crerr.Newf("feed status=%d body=%s", resp.StatusCode, abbreviate(raw))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return crerr.Mark(statusErr, ErrFeedUnavailable)
		}
		return statusErr
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode feed payload")
	}

	c.logger.WithFields(logging.Fields{
		"endpoint":  endpoint,
		"remaining": resp.Header.Get("x-requests-remaining"),
	}).Debugf("Fetched %d bytes in %v", len(raw), time.Since(started).Round(time.Millisecond))
	return nil
}

func (c *OddsClient) redact(text string) string {
	if c.apiKey == "" {
		return text
	}
	return strings.ReplaceAll(text, c.apiKey, "***")
}

func abbreviate(raw []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(raw))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
