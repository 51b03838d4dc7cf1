package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"eximbot/internal/logger"
)

// CreditRepository is the only writer to user_credits. The unlock engine and
// the order workflow reach the table through the Tx variants so their debits
// and credits stay inside the caller's transaction.
type CreditRepository struct {
	db *pgxpool.Pool
}

func NewCreditRepository(db *pgxpool.Pool) *CreditRepository {
	return &CreditRepository{db: db}
}

// Get returns the user's balance, 0.0 when no row exists. The read path
// degrades silently: after exhausted retries it logs and reports 0.0.
func (r *CreditRepository) Get(ctx context.Context, userID int64) float64 {
	var credits float64
	err := withRetry(ctx, "credits.get", func() error {
		return r.db.QueryRow(ctx,
			"SELECT credits FROM user_credits WHERE user_id = $1", userID).Scan(&credits)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0.0
	}
	if err != nil {
		logger.Log.Error("credit balance read failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0.0
	}
	return credits
}

// Initialize grants the starting balance exactly once; concurrent callers
// observe at most one insert and an existing row is never overwritten.
func (r *CreditRepository) Initialize(ctx context.Context, userID int64, amount float64) error {
	return withRetry(ctx, "credits.initialize", func() error {
		_, err := r.db.Exec(ctx, `
			INSERT INTO user_credits (user_id, credits, has_redeemed_free_credits)
			VALUES ($1, ROUND($2::numeric, 1), TRUE)
			ON CONFLICT (user_id) DO NOTHING
		`, userID, amount)
		return err
	})
}

// Debit decrements the balance only when credits >= amount, in a single
// conditional update. It reports whether the decrement occurred.
func (r *CreditRepository) Debit(ctx context.Context, userID int64, amount float64) (bool, error) {
	var ok bool
	err := withRetry(ctx, "credits.debit", func() error {
		var newBalance float64
		err := r.db.QueryRow(ctx, debitSQL, userID, amount).Scan(&newBalance)
		if errors.Is(err, pgx.ErrNoRows) {
			ok = false
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

// Credit increments the balance, creating the row if absent, and returns the
// new balance.
func (r *CreditRepository) Credit(ctx context.Context, userID int64, amount float64) (float64, error) {
	var balance float64
	err := withRetry(ctx, "credits.credit", func() error {
		return r.db.QueryRow(ctx, creditSQL, userID, amount).Scan(&balance)
	})
	return balance, err
}

const debitSQL = `
	UPDATE user_credits
	SET credits = ROUND(credits - $2::numeric, 1), last_updated = NOW()
	WHERE user_id = $1 AND credits >= $2
	RETURNING credits`

const creditSQL = `
	INSERT INTO user_credits (user_id, credits)
	VALUES ($1, ROUND($2::numeric, 1))
	ON CONFLICT (user_id)
	DO UPDATE SET credits = ROUND(user_credits.credits + EXCLUDED.credits, 1), last_updated = NOW()
	RETURNING credits`

// BalanceForUpdateTx reads the balance under a row-exclusive lock. ok is
// false when the user has no balance row.
func (r *CreditRepository) BalanceForUpdateTx(ctx context.Context, tx pgx.Tx, userID int64) (balance float64, ok bool, err error) {
	err = tx.QueryRow(ctx,
		"SELECT credits FROM user_credits WHERE user_id = $1 FOR UPDATE", userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

// DebitTx is Debit inside the caller's transaction; no retry, the caller owns
// the rollback.
func (r *CreditRepository) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (newBalance float64, ok bool, err error) {
	err = tx.QueryRow(ctx, debitSQL, userID, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

// CreditTx is Credit inside the caller's transaction.
func (r *CreditRepository) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (float64, error) {
	var balance float64
	err := tx.QueryRow(ctx, creditSQL, userID, amount).Scan(&balance)
	return balance, err
}

// HasRedeemedFreeCredits reports whether the user already got the one-time
// starting grant.
func (r *CreditRepository) HasRedeemedFreeCredits(ctx context.Context, userID int64) (bool, error) {
	var redeemed bool
	err := r.db.QueryRow(ctx,
		"SELECT has_redeemed_free_credits FROM user_credits WHERE user_id = $1", userID).Scan(&redeemed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return redeemed, err
}
