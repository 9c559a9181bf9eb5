package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/scoutlab/vexscout/internal/models"
)

const (
	defaultBaseURL = "https://www.robotevents.com/api/v2"
	pageSize       = 250
	maxPages       = 20

	requestTimeout = 15 * time.Second
	requestDelay   = 150 * time.Millisecond
	maxAttempts    = 3
)

// RobotEventsClient fetches event data from the RobotEvents API. All calls
// honor the API's rate limits: a fixed delay before every request, retries
// with growing waits on 429, and a circuit breaker that opens when the API
// keeps failing outright.
type RobotEventsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewRobotEventsClient creates a client for the production API.
func NewRobotEventsClient(apiKey string, logger *logrus.Logger) *RobotEventsClient {
	return NewRobotEventsClientWithBaseURL(defaultBaseURL, apiKey, logger)
}

// NewRobotEventsClientWithBaseURL creates a client against an arbitrary base
// URL, which is how tests point it at a local server.
func NewRobotEventsClientWithBaseURL(baseURL, apiKey string, logger *logrus.Logger) *RobotEventsClient {
	settings := gobreaker.Settings{
		Name:    "robotevents",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}
	return &RobotEventsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// API response structures.
type reEvent struct {
	ID        int    `json:"id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Divisions []struct {
		ID int `json:"id"`
	} `json:"divisions"`
}

type rePage[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

type reRanking struct {
	Rank int `json:"rank"`
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
	WP     int `json:"wp"`
	AP     int `json:"ap"`
	SP     int `json:"sp"`
}

type reAllianceTeam struct {
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
}

type reMatch struct {
	Name      string `json:"name"`
	Alliances []struct {
		Color string `json:"color"`
		// Score is null until the match has been played.
		Score *float64         `json:"score"`
		Teams []reAllianceTeam `json:"teams"`
	} `json:"alliances"`
}

type reSkill struct {
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
	Score float64 `json:"score"`
}

// fetchEvent resolves an event SKU to its ID, name and division list. A SKU
// with no match returns (nil, nil); the caller decides how to report it.
func (c *RobotEventsClient) fetchEvent(ctx context.Context, sku string) (*reEvent, error) {
	var page rePage[reEvent]
	url := fmt.Sprintf("%s/events?sku=%s&include=divisions", c.baseURL, sku)
	if err := c.get(ctx, url, &page); err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, nil
	}
	return &page.Data[0], nil
}

// FetchSnapshot pulls everything the analysis needs for one event: rankings
// and matches for every division, plus solo skills scores.
func (c *RobotEventsClient) FetchSnapshot(ctx context.Context, sku string) (*models.Snapshot, error) {
	event, err := c.fetchEvent(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("fetch event %s: %w", sku, err)
	}
	if event == nil {
		return nil, nil
	}

	divisions := event.Divisions
	if len(divisions) == 0 {
		divisions = []struct {
			ID int `json:"id"`
		}{{ID: 1}}
	}

	snapshot := &models.Snapshot{
		EventSKU:  event.SKU,
		EventName: event.Name,
		Skills:    make(map[string]float64),
	}

	for _, div := range divisions {
		rankings, err := c.fetchRankings(ctx, event.ID, div.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch rankings: %w", err)
		}
		snapshot.Rankings = append(snapshot.Rankings, rankings...)

		matches, err := c.fetchMatches(ctx, event.ID, div.ID, len(snapshot.Matches))
		if err != nil {
			return nil, fmt.Errorf("fetch matches: %w", err)
		}
		snapshot.Matches = append(snapshot.Matches, matches...)
	}

	if err := c.fetchSkills(ctx, event.ID, snapshot.Skills); err != nil {
		// Skills are a bonus signal; the analysis degrades without them.
		c.logger.WithError(err).Warn("Skills fetch failed, continuing without")
	}

	c.logger.WithFields(logrus.Fields{
		"event":   event.SKU,
		"teams":   len(snapshot.Rankings),
		"matches": len(snapshot.Matches),
		"skills":  len(snapshot.Skills),
	}).Info("Snapshot fetched")
	return snapshot, nil
}

func (c *RobotEventsClient) fetchRankings(ctx context.Context, eventID, divisionID int) ([]models.TeamRanking, error) {
	var out []models.TeamRanking
	for page := 1; page <= maxPages; page++ {
		var resp rePage[reRanking]
		url := fmt.Sprintf("%s/events/%d/divisions/%d/rankings?page=%d&per_page=%d",
			c.baseURL, eventID, divisionID, page, pageSize)
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}
		for _, r := range resp.Data {
			total := r.Wins + r.Losses + r.Ties
			ranking := models.TeamRanking{
				TeamID: r.Team.ID,
				Number: r.Team.Name,
				Rank:   r.Rank,
				Wins:   r.Wins,
				Losses: r.Losses,
				Ties:   r.Ties,
			}
			if total > 0 {
				ranking.AutoAvg = float64(r.AP) / float64(total)
				ranking.WPAvg = float64(r.WP) / float64(total)
				ranking.SPAvg = float64(r.SP) / float64(total)
			}
			out = append(out, ranking)
		}
		if resp.Meta.LastPage > 0 && page >= resp.Meta.LastPage {
			break
		}
	}
	return out, nil
}

func (c *RobotEventsClient) fetchMatches(ctx context.Context, eventID, divisionID, startIndex int) ([]models.Match, error) {
	var out []models.Match
	for page := 1; page <= maxPages; page++ {
		var resp rePage[reMatch]
		url := fmt.Sprintf("%s/events/%d/divisions/%d/matches?page=%d&per_page=%d",
			c.baseURL, eventID, divisionID, page, pageSize)
		if err := c.get(ctx, url, &resp); err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}
		for _, m := range resp.Data {
			match, ok := convertMatch(m, startIndex+len(out))
			if !ok {
				continue
			}
			out = append(out, match)
		}
		if resp.Meta.LastPage > 0 && page >= resp.Meta.LastPage {
			break
		}
	}
	return out, nil
}

// convertMatch maps a raw API match onto the internal form. Matches missing
// either alliance, any team reference, or a score on either side (an
// unplayed match reports null) are dropped.
func convertMatch(m reMatch, index int) (models.Match, bool) {
	var red, blue models.Alliance
	var haveRed, haveBlue bool
	for _, a := range m.Alliances {
		if a.Score == nil {
			continue
		}
		teams := make([]string, 0, len(a.Teams))
		for _, t := range a.Teams {
			if t.Team.Name != "" {
				teams = append(teams, t.Team.Name)
			}
		}
		if len(teams) == 0 {
			continue
		}
		alliance := models.Alliance{Teams: teams, Score: *a.Score}
		switch a.Color {
		case "red":
			red, haveRed = alliance, true
		case "blue":
			blue, haveBlue = alliance, true
		}
	}
	if !haveRed || !haveBlue {
		return models.Match{}, false
	}

	isElim, round := models.ParseMatchName(m.Name)
	return models.Match{
		Index:  index,
		Name:   m.Name,
		Red:    red,
		Blue:   blue,
		IsElim: isElim,
		Round:  round,
	}, true
}

func (c *RobotEventsClient) fetchSkills(ctx context.Context, eventID int, skills map[string]float64) error {
	for page := 1; page <= maxPages; page++ {
		var resp rePage[reSkill]
		url := fmt.Sprintf("%s/events/%d/skills?page=%d&per_page=%d", c.baseURL, eventID, page, pageSize)
		if err := c.get(ctx, url, &resp); err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			break
		}
		for _, s := range resp.Data {
			if s.Team.Name == "" {
				continue
			}
			// A team posts separate driver and programming runs; keep the best.
			if s.Score > skills[s.Team.Name] {
				skills[s.Team.Name] = s.Score
			}
		}
		if resp.Meta.LastPage > 0 && page >= resp.Meta.LastPage {
			break
		}
	}
	return nil
}

// get performs one authorized GET through the circuit breaker, pacing
// requests and backing off on 429 responses.
func (c *RobotEventsClient) get(ctx context.Context, url string, target interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		select {
		case <-time.After(requestDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				if attempt == maxAttempts {
					return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, err)
				}
				time.Sleep(time.Second)
				continue
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				wait := time.Duration(attempt) * 3 * time.Second
				c.logger.WithField("wait", wait.String()).Warn("Rate limited by RobotEvents")
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}

			if resp.StatusCode != http.StatusOK {
				resp.Body.Close()
				return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			}

			err = json.NewDecoder(resp.Body).Decode(target)
			resp.Body.Close()
			return nil, err
		}
		return nil, fmt.Errorf("rate limited after %d attempts", maxAttempts)
	})
	return err
}
