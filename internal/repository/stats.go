package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"eximbot/internal/entities"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Track increments the usage counter for one (user, command) pair.
func (r *StatsRepository) Track(ctx context.Context, userID int64, command string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_command_stats (user_id, command, usage_count, last_used)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, command)
		DO UPDATE SET usage_count = user_command_stats.usage_count + 1, last_used = NOW()
	`, userID, command)
	return err
}

// Stats returns the user's total invocation count and per-command breakdown.
func (r *StatsRepository) Stats(ctx context.Context, userID int64) (*entities.CommandStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT command, usage_count
		FROM user_command_stats
		WHERE user_id = $1
		ORDER BY usage_count DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &entities.CommandStats{
		UserID:     userID,
		PerCommand: make(map[string]int),
	}
	for rows.Next() {
		var command string
		var count int
		if err := rows.Scan(&command, &count); err != nil {
			return nil, err
		}
		stats.PerCommand[command] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
