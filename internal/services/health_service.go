package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rodpaiva/mensageiro-fit/internal/apperrors"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
)

// Terminal report texts. Exactly one of these four shapes leaves
// GenerateDailyReport per invocation.
const (
	ReportUserNotRegistered = "⚠️ Usuário não cadastrado. Rode a configuração inicial (auth-setup) antes de pedir relatórios."
	ReportTokenUnavailable  = "⚠️ Não foi possível conectar ao Google. Verifique a autorização da conta."
	ReportDegraded          = "😕 Não consegui coletar seus dados de saúde hoje. Tentarei novamente no próximo relatório."
)

// HealthService orchestrates the daily report: resolve the user,
// ensure a valid token, collect the three metrics, persist today's
// snapshot and render the message.
type HealthService struct {
	users     domain.UserRepository
	snapshots domain.SnapshotRepository
	tokens    domain.TokenProvider
	fit       domain.FitnessClient
	now       func() time.Time
}

// NewHealthService creates a new health report service
func NewHealthService(users domain.UserRepository, snapshots domain.SnapshotRepository, tokens domain.TokenProvider, fit domain.FitnessClient) *HealthService {
	return &HealthService{
		users:     users,
		snapshots: snapshots,
		tokens:    tokens,
		fit:       fit,
		now:       time.Now,
	}
}

// GenerateDailyReport produces the report text for the given identity.
// It never returns an error: every failure path resolves to one of the
// fixed texts above, so schedulers can call it fire-and-forget.
func (s *HealthService) GenerateDailyReport(ctx context.Context, email string) string {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.Warn("User lookup failed, skipping report", "email", email, "error", err)
		return ReportUserNotRegistered
	}

	token, err := s.tokens.EnsureValidToken(ctx, user.ID)
	if err != nil {
		logger.Warn("No valid access token for user", "user_id", user.ID, "error", err)
		return ReportTokenUnavailable
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	steps, heartRate, sleep, err := s.collectMetrics(ctx, token, midnight, now)
	if err != nil {
		appErr := apperrors.NewFetchError(err, "fitness")
		logger.Error("Metric collection failed, sending degraded report", appErr.LogFields()...)
		return ReportDegraded
	}

	snapshot := &domain.HealthMetricSnapshot{
		UserID: user.ID,
		Date:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Steps:  steps,
	}
	if err := s.snapshots.UpsertDaily(ctx, snapshot); err != nil {
		appErr := apperrors.NewDatabaseError(err)
		logger.Error("Failed to persist daily snapshot", appErr.LogFields()...)
		return ReportDegraded
	}

	logger.Info("Daily report generated", "user_id", user.ID, "steps", steps, "heart_rate_avg", heartRate)
	return renderReport(steps, heartRate, sleep)
}

// collectMetrics runs the three fetches sequentially. A failure in any
// one degrades the whole report rather than silently dropping a line.
func (s *HealthService) collectMetrics(ctx context.Context, token string, midnight, now time.Time) (steps, heartRate int, sleep string, err error) {
	steps, err = s.fit.FetchSteps(ctx, token, midnight, now)
	if err != nil {
		return 0, 0, "", fmt.Errorf("steps: %w", err)
	}

	heartRate, err = s.fit.FetchHeartRate(ctx, token, midnight, now)
	if err != nil {
		return 0, 0, "", fmt.Errorf("heart rate: %w", err)
	}

	// Sleep uses a rolling 24h window so last night's session, which
	// starts before midnight, is counted.
	sleep, err = s.fit.FetchSleep(ctx, token, now.Add(-24*time.Hour), now)
	if err != nil {
		return 0, 0, "", fmt.Errorf("sleep: %w", err)
	}

	return steps, heartRate, sleep, nil
}

func renderReport(steps, heartRate int, sleep string) string {
	return fmt.Sprintf(
		"📊 *Resumo de Saúde do Dia*\n\n👣 Passos: %d\n❤️ Batimentos (média): %d bpm\n😴 Sono: %s\n\n🔥 Continue se movendo!",
		steps, heartRate, sleep)
}
