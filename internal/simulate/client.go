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

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
	"github.com/shopspring/decimal"
)

const progressInterval = time.Second

// HTTPClient wraps http.Client for the arena API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// Get decodes the JSON body of a GET into out.
func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Post sends body as JSON and returns the status code.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

type teamPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type referralPayload struct {
	Collected      int `json:"collected"`
	ToConsultation int `json:"to_consultation"`
	ToSurgery      int `json:"to_surgery"`
}

type otherPayload struct {
	Unilovers         int `json:"unilovers"`
	Ambassadors       int `json:"ambassadors"`
	InstagramMentions int `json:"instagram_mentions"`
}

type recordPayload struct {
	ID                  string           `json:"id"`
	SubjectID           string           `json:"subject_id"`
	TeamID              string           `json:"team_id"`
	Category            string           `json:"category"`
	OccurredOn          string           `json:"occurred_on"`
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	Score               *int             `json:"score,omitempty"`
	CitedMember         bool             `json:"cited_member,omitempty"`
	Kind                string           `json:"kind,omitempty"`
	Referral            *referralPayload `json:"referral,omitempty"`
	AttributedSubjectID string           `json:"attributed_subject_id,omitempty"`
	Other               *otherPayload    `json:"other,omitempty"`
}

type cardPayload struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	Kind     string `json:"kind"`
	IssuedOn string `json:"issued_on"`
}

func toRecordPayload(r model.ActivityRecord) recordPayload {
	p := recordPayload{
		ID:                  r.ID,
		SubjectID:           r.SubjectID,
		TeamID:              r.TeamID,
		Category:            string(r.Category),
		OccurredOn:          dateOf(r.OccurredOn),
		Amount:              r.Amount,
		Score:               r.Score,
		CitedMember:         r.CitedMember,
		Kind:                string(r.Kind),
		AttributedSubjectID: r.AttributedSubjectID,
	}
	if r.Referral != nil {
		p.Referral = &referralPayload{
			Collected:      r.Referral.Collected,
			ToConsultation: r.Referral.ToConsultation,
			ToSurgery:      r.Referral.ToSurgery,
		}
	}
	if r.Other != nil {
		p.Other = &otherPayload{
			Unilovers:         r.Other.Unilovers,
			Ambassadors:       r.Other.Ambassadors,
			InstagramMentions: r.Other.InstagramMentions,
		}
	}
	return p
}

func toCardPayload(c model.CardEvent) cardPayload {
	return cardPayload{ID: c.ID, TeamID: c.TeamID, Kind: string(c.Kind), IssuedOn: dateOf(c.IssuedOn)}
}

// request is one queued POST.
type request struct {
	path string
	body any
}

// submitAll posts every request with the given number of concurrent workers.
func submitAll(ctx context.Context, client *HTTPClient, workers int, reqs []request, stats *Stats) {
	if workers < 1 {
		workers = 1
	}
	log := logger.Named("simulate")
	log.Info(ctx, "submitting", logger.Int("requests", len(reqs)), logger.Int("workers", workers))

	var submitted, successful, duplicate, failed atomic.Int64
	var lastReport atomic.Int64
	lastReport.Store(time.Now().UnixNano())

	ch := make(chan request, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range ch {
				if ctx.Err() != nil {
					continue
				}
				switch submitOne(ctx, client, r) {
				case resultSuccess:
					successful.Add(1)
				case resultDuplicate:
					duplicate.Add(1)
				case resultFailed:
					failed.Add(1)
				}
				n := submitted.Add(1)

				last := lastReport.Load()
				now := time.Now().UnixNano()
				if time.Duration(now-last) >= progressInterval && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int("submitted", int(n)),
						logger.Int("total", len(reqs)),
						logger.Int("failed", int(failed.Load())),
					)
				}
			}
		}()
	}

feed:
	for _, r := range reqs {
		select {
		case <-ctx.Done():
			break feed
		case ch <- r:
		}
	}
	close(ch)
	wg.Wait()

	stats.Submitted += int(submitted.Load())
	stats.Successful += int(successful.Load())
	stats.Duplicate += int(duplicate.Load())
	stats.Failed += int(failed.Load())
}

func submitOne(ctx context.Context, client *HTTPClient, r request) submitResult {
	status, err := client.Post(ctx, r.path, r.body)
	if err != nil {
		return resultFailed
	}
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return resultSuccess
	case http.StatusConflict:
		return resultDuplicate
	default:
		return resultFailed
	}
}
