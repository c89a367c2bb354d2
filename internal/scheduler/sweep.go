package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtline/courtline/internal/db"
	"github.com/courtline/courtline/internal/pairing"
)

// SweepStaleSessions completes active sessions that have seen no round
// activity since the idle cutoff and forgets their cached schedules, so a
// revived roster gets a freshly randomized rotation.
func SweepStaleSessions(ctx context.Context, database *db.DB, pairer *pairing.Scheduler, idleFor time.Duration) error {
	cutoff := time.Now().Add(-idleFor)
	logger := log.Ctx(ctx).With().
		Str("component", "session_sweep").
		Time("cutoff", cutoff).
		Logger()

	stale, err := database.ListStaleActiveSessions(ctx, cutoff)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list stale sessions")
		return err
	}
	if len(stale) == 0 {
		logger.Debug().Msg("No stale sessions")
		return nil
	}

	logger.Info().Int("session_count", len(stale)).Msg("Sweeping stale sessions")
	for _, session := range stale {
		sessionLogger := logger.With().Str("session_id", session.ID).Logger()

		roster, err := database.SessionRoster(ctx, session.ID)
		if err != nil {
			sessionLogger.Error().Err(err).Msg("Failed to load roster for stale session")
			return err
		}
		if err := database.CompleteSession(ctx, session.ID); err != nil {
			sessionLogger.Error().Err(err).Msg("Failed to complete stale session")
			return err
		}
		pairer.Forget(roster, pairing.Format(session.Format), session.MaxCourts)

		sessionLogger.Info().
			Time("last_active", session.UpdatedAt).
			Msg("Completed stale session")
	}
	return nil
}

// RegisterSessionSweep schedules SweepStaleSessions on the given cron
// expression.
func RegisterSessionSweep(svc *Service, database *db.DB, pairer *pairing.Scheduler, cronExpr string, idleFor time.Duration) error {
	_, err := svc.AddJob("session_sweep", cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := SweepStaleSessions(ctx, database, pairer, idleFor); err != nil {
			log.Error().Err(err).Msg("Session sweep failed")
		}
	})
	return err
}
