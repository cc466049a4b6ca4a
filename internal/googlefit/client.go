package googlefit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// BaseURL is the per-user dataset root of the Fitness REST API.
const BaseURL = "https://www.googleapis.com/fitness/v1/users/me"

const (
	stepsDataSource   = "derived:com.google.step_count.delta:com.google.android.gms:estimated_steps"
	heartRateDataType = "com.google.heart_rate.bpm"

	// Google Fit activity type code for sleep sessions.
	sleepActivityType = 72
)

// NoSleepData is rendered when no sleep sessions overlap the window,
// so absence reads differently from a true zero.
const NoSleepData = "Dados não registrados"

// Client reads aggregated metrics from the Fitness API. The response
// shapes are nested and sparsely populated: buckets, datasets, points
// and values are all optional, and an empty level means "no samples",
// not an error.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a fitness API client. baseURL is normally BaseURL;
// tests point it at a local server.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

type aggregateBy struct {
	DataTypeName string `json:"dataTypeName,omitempty"`
	DataSourceID string `json:"dataSourceId,omitempty"`
}

type bucketByTime struct {
	DurationMillis int64 `json:"durationMillis"`
}

type aggregateRequest struct {
	AggregateBy     []aggregateBy `json:"aggregateBy"`
	BucketByTime    bucketByTime  `json:"bucketByTime"`
	StartTimeMillis int64         `json:"startTimeMillis"`
	EndTimeMillis   int64         `json:"endTimeMillis"`
}

type aggregateValue struct {
	IntVal int64   `json:"intVal"`
	FpVal  float64 `json:"fpVal"`
}

type aggregatePoint struct {
	Value []aggregateValue `json:"value"`
}

type aggregateDataset struct {
	Point []aggregatePoint `json:"point"`
}

type aggregateBucket struct {
	Dataset []aggregateDataset `json:"dataset"`
}

type aggregateResponse struct {
	Bucket []aggregateBucket `json:"bucket"`
}

// Session timestamps come back as decimal strings, not numbers.
type session struct {
	StartTimeMillis string `json:"startTimeMillis"`
	EndTimeMillis   string `json:"endTimeMillis"`
}

type sessionsResponse struct {
	Session []session `json:"session"`
}

// FetchSteps sums the step deltas recorded between start and end,
// bucketed over the whole window. Days with no synced data come back
// with empty buckets and count as zero.
func (c *Client) FetchSteps(ctx context.Context, token string, start, end time.Time) (int, error) {
	body := aggregateRequest{
		AggregateBy:     []aggregateBy{{DataSourceID: stepsDataSource}},
		BucketByTime:    bucketByTime{DurationMillis: end.Sub(start).Milliseconds()},
		StartTimeMillis: start.UnixMilli(),
		EndTimeMillis:   end.UnixMilli(),
	}

	var resp aggregateResponse
	if err := c.aggregate(ctx, token, body, &resp); err != nil {
		return 0, err
	}

	steps := 0
	for _, bucket := range resp.Bucket {
		for _, dataset := range bucket.Dataset {
			for _, point := range dataset.Point {
				for _, value := range point.Value {
					steps += int(value.IntVal)
				}
			}
		}
	}
	return steps, nil
}

// FetchHeartRate returns the provider-computed bpm average for the
// window, truncated to an integer. The average is the first value of
// the first point; absence yields zero.
func (c *Client) FetchHeartRate(ctx context.Context, token string, start, end time.Time) (int, error) {
	body := aggregateRequest{
		AggregateBy:     []aggregateBy{{DataTypeName: heartRateDataType}},
		BucketByTime:    bucketByTime{DurationMillis: end.Sub(start).Milliseconds()},
		StartTimeMillis: start.UnixMilli(),
		EndTimeMillis:   end.UnixMilli(),
	}

	var resp aggregateResponse
	if err := c.aggregate(ctx, token, body, &resp); err != nil {
		return 0, err
	}

	for _, bucket := range resp.Bucket {
		for _, dataset := range bucket.Dataset {
			for _, point := range dataset.Point {
				for _, value := range point.Value {
					return int(value.FpVal), nil
				}
			}
		}
	}
	return 0, nil
}

// FetchSleep sums the duration of sleep sessions overlapping the
// window and renders it as "{H}h {M}min". Overlapping sessions are
// summed, not deduplicated. A zero total renders as NoSleepData.
func (c *Client) FetchSleep(ctx context.Context, token string, start, end time.Time) (string, error) {
	params := url.Values{}
	params.Set("startTime", start.Format(time.RFC3339))
	params.Set("endTime", end.Format(time.RFC3339))
	params.Set("activityType", strconv.Itoa(sleepActivityType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sessions request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sessions request failed: status %d", httpResp.StatusCode)
	}

	var resp sessionsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode sessions response: %w", err)
	}

	var totalMinutes int64
	for _, s := range resp.Session {
		startMs, err1 := strconv.ParseInt(s.StartTimeMillis, 10, 64)
		endMs, err2 := strconv.ParseInt(s.EndTimeMillis, 10, 64)
		if err1 != nil || err2 != nil || endMs <= startMs {
			continue
		}
		totalMinutes += (endMs - startMs) / 1000 / 60
	}

	return formatSleepDuration(totalMinutes), nil
}

func formatSleepDuration(minutes int64) string {
	if minutes <= 0 {
		return NoSleepData
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func (c *Client) aggregate(ctx context.Context, token string, body aggregateRequest, out *aggregateResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dataset:aggregate", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("aggregate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aggregate request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode aggregate response: %w", err)
	}
	return nil
}
