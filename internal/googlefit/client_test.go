package googlefit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.Client(), server.URL)
}

func TestFetchStepsSumsAllPoints(t *testing.T) {
	var gotReq aggregateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/dataset:aggregate", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		fmt.Fprint(w, `{
			"bucket": [
				{"dataset": [{"point": [
					{"value": [{"intVal": 1200}]},
					{"value": [{"intVal": 2500}, {"intVal": 500}]}
				]}]},
				{"dataset": [{"point": [{"value": [{"intVal": 300}]}]}]}
			]
		}`)
	})

	end := time.Now()
	start := end.Add(-6 * time.Hour)
	steps, err := client.FetchSteps(context.Background(), "tok-123", start, end)
	require.NoError(t, err)
	assert.Equal(t, 4500, steps)

	assert.Equal(t, stepsDataSource, gotReq.AggregateBy[0].DataSourceID)
	assert.Equal(t, end.Sub(start).Milliseconds(), gotReq.BucketByTime.DurationMillis)
	assert.Equal(t, start.UnixMilli(), gotReq.StartTimeMillis)
	assert.Equal(t, end.UnixMilli(), gotReq.EndTimeMillis)
}

func TestFetchStepsEmptyBucketsIsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bucket": []}`)
	})

	steps, err := client.FetchSteps(context.Background(), "tok", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, steps)
}

func TestFetchStepsSparseResponseIsZero(t *testing.T) {
	// Buckets without datasets, datasets without points. The API omits
	// levels entirely when a source has no samples.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bucket": [{}, {"dataset": [{}]}, {"dataset": [{"point": []}]}]}`)
	})

	steps, err := client.FetchSteps(context.Background(), "tok", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, steps)
}

func TestFetchStepsServerErrorFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.FetchSteps(context.Background(), "tok", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestFetchHeartRateTruncatesAverage(t *testing.T) {
	var gotReq aggregateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{
			"bucket": [{"dataset": [{"point": [
				{"value": [{"fpVal": 72.84}, {"fpVal": 130.0}, {"fpVal": 51.0}]}
			]}]}]
		}`)
	})

	bpm, err := client.FetchHeartRate(context.Background(), "tok", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 72, bpm)
	assert.Equal(t, heartRateDataType, gotReq.AggregateBy[0].DataTypeName)
}

func TestFetchHeartRateAbsentIsZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bucket": [{"dataset": [{"point": []}]}]}`)
	})

	bpm, err := client.FetchHeartRate(context.Background(), "tok", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, bpm)
}

func TestFetchSleepSumsSessions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/sessions", r.URL.Path)
		require.Equal(t, "72", r.URL.Query().Get("activityType"))
		require.NotEmpty(t, r.URL.Query().Get("startTime"))
		require.NotEmpty(t, r.URL.Query().Get("endTime"))

		// One 90 minute session, millis as decimal strings.
		fmt.Fprint(w, `{"session": [
			{"startTimeMillis": "1700000000000", "endTimeMillis": "1700005400000"}
		]}`)
	})

	sleep, err := client.FetchSleep(context.Background(), "tok", time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "1h 30min", sleep)
}

func TestFetchSleepMultipleSessionsAreSummed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 420 minutes overnight plus 45 minute nap.
		fmt.Fprint(w, `{"session": [
			{"startTimeMillis": "1700000000000", "endTimeMillis": "1700025200000"},
			{"startTimeMillis": "1700050000000", "endTimeMillis": "1700052700000"},
			{"startTimeMillis": "bad", "endTimeMillis": "1700052700000"}
		]}`)
	})

	sleep, err := client.FetchSleep(context.Background(), "tok", time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "7h 45min", sleep)
}

func TestFetchSleepNoSessions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	sleep, err := client.FetchSleep(context.Background(), "tok", time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Equal(t, NoSleepData, sleep)
}

func TestFormatSleepDuration(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{0, NoSleepData},
		{-5, NoSleepData},
		{90, "1h 30min"},
		{420, "7h 0min"},
		{59, "0h 59min"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatSleepDuration(tt.minutes), "minutes=%d", tt.minutes)
	}
}
