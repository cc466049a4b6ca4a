package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodpaiva/mensageiro-fit/internal/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) UpdateTelegramChatID(ctx context.Context, userID uint, chatID string) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.TelegramChatID = chatID
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeSnapshotRepo struct {
	upserts   []domain.HealthMetricSnapshot
	upsertErr error
}

func (f *fakeSnapshotRepo) UpsertDaily(ctx context.Context, snapshot *domain.HealthMetricSnapshot) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, *snapshot)
	return nil
}

func (f *fakeSnapshotRepo) GetByUserAndDate(ctx context.Context, userID uint, date time.Time) (*domain.HealthMetricSnapshot, error) {
	for i := range f.upserts {
		if f.upserts[i].UserID == userID && f.upserts[i].Date.Equal(date) {
			return &f.upserts[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeTokenProvider struct {
	token string
	err   error
	calls int
}

func (f *fakeTokenProvider) EnsureValidToken(ctx context.Context, userID uint) (string, error) {
	f.calls++
	return f.token, f.err
}

type fakeFitnessClient struct {
	steps     int
	stepsErr  error
	heartRate int
	hrErr     error
	sleep     string
	sleepErr  error
	calls     int
}

func (f *fakeFitnessClient) FetchSteps(ctx context.Context, token string, start, end time.Time) (int, error) {
	f.calls++
	return f.steps, f.stepsErr
}

func (f *fakeFitnessClient) FetchHeartRate(ctx context.Context, token string, start, end time.Time) (int, error) {
	f.calls++
	return f.heartRate, f.hrErr
}

func (f *fakeFitnessClient) FetchSleep(ctx context.Context, token string, start, end time.Time) (string, error) {
	f.calls++
	return f.sleep, f.sleepErr
}

func TestGenerateDailyReportUserNotRegistered(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{}}
	tokens := &fakeTokenProvider{token: "tok"}
	fit := &fakeFitnessClient{}
	snapshots := &fakeSnapshotRepo{}

	svc := NewHealthService(users, snapshots, tokens, fit)
	text := svc.GenerateDailyReport(context.Background(), "nobody@example.com")

	assert.Equal(t, ReportUserNotRegistered, text)
	assert.Equal(t, 0, tokens.calls, "token stage must not run")
	assert.Equal(t, 0, fit.calls, "no network fetcher may be called")
	assert.Empty(t, snapshots.upserts)
}

func TestGenerateDailyReportTokenUnavailable(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"ana@example.com": {ID: 1, Email: "ana@example.com"},
	}}
	tokens := &fakeTokenProvider{err: errors.New("refresh grant rejected")}
	fit := &fakeFitnessClient{}
	snapshots := &fakeSnapshotRepo{}

	svc := NewHealthService(users, snapshots, tokens, fit)
	text := svc.GenerateDailyReport(context.Background(), "ana@example.com")

	assert.Equal(t, ReportTokenUnavailable, text)
	assert.Equal(t, 0, fit.calls, "no metric fetch after token failure")
	assert.Empty(t, snapshots.upserts)
}

func TestGenerateDailyReportFetchFailureDegrades(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"ana@example.com": {ID: 1, Email: "ana@example.com"},
	}}
	tokens := &fakeTokenProvider{token: "tok"}
	fit := &fakeFitnessClient{steps: 100, hrErr: errors.New("corrupted response")}
	snapshots := &fakeSnapshotRepo{}

	svc := NewHealthService(users, snapshots, tokens, fit)
	text := svc.GenerateDailyReport(context.Background(), "ana@example.com")

	// A single corrupted response degrades the whole report instead of
	// omitting one line.
	assert.Equal(t, ReportDegraded, text)
	assert.Empty(t, snapshots.upserts, "degraded runs must not persist a snapshot")
}

func TestGenerateDailyReportPersistFailureDegrades(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"ana@example.com": {ID: 1, Email: "ana@example.com"},
	}}
	tokens := &fakeTokenProvider{token: "tok"}
	fit := &fakeFitnessClient{steps: 100, heartRate: 60, sleep: "6h 0min"}
	snapshots := &fakeSnapshotRepo{upsertErr: errors.New("db down")}

	svc := NewHealthService(users, snapshots, tokens, fit)
	text := svc.GenerateDailyReport(context.Background(), "ana@example.com")

	assert.Equal(t, ReportDegraded, text)
}

func TestGenerateDailyReportEndToEnd(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"ana@example.com": {ID: 7, Email: "ana@example.com"},
	}}
	tokens := &fakeTokenProvider{token: "tok"}
	fit := &fakeFitnessClient{steps: 4200, heartRate: 72, sleep: "7h 0min"}
	snapshots := &fakeSnapshotRepo{}

	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.Local)
	svc := NewHealthService(users, snapshots, tokens, fit)
	svc.now = func() time.Time { return now }

	text := svc.GenerateDailyReport(context.Background(), "ana@example.com")

	assert.Contains(t, text, "4200")
	assert.Contains(t, text, "72")
	assert.Contains(t, text, "7h 0min")
	assert.True(t, strings.HasPrefix(text, "📊"))

	require.Len(t, snapshots.upserts, 1, "snapshot persisted exactly once")
	snap := snapshots.upserts[0]
	assert.Equal(t, uint(7), snap.UserID)
	assert.Equal(t, 4200, snap.Steps)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), snap.Date)
}

func TestRenderReport(t *testing.T) {
	text := renderReport(4200, 72, "Dados não registrados")
	assert.Equal(t,
		"📊 *Resumo de Saúde do Dia*\n\n👣 Passos: 4200\n❤️ Batimentos (média): 72 bpm\n😴 Sono: Dados não registrados\n\n🔥 Continue se movendo!",
		text)
}
