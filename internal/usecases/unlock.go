package usecases

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"eximbot/internal/entities"
	"eximbot/internal/logger"
	"eximbot/internal/metrics"
	"eximbot/internal/repository"
)

// txBeginner is satisfied by *pgxpool.Pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type unlockCatalog interface {
	GetByName(ctx context.Context, name string) (*entities.Importer, error)
}

type unlockLedger interface {
	BalanceForUpdateTx(ctx context.Context, tx pgx.Tx, userID int64) (float64, bool, error)
	DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (float64, bool, error)
}

type unlockSnapshots interface {
	ExistsTx(ctx context.Context, tx pgx.Tx, userID int64, importerName string) (bool, error)
	InsertTx(ctx context.Context, tx pgx.Tx, sc entities.SavedContact) error
}

type UnlockStatus int

const (
	UnlockSaved UnlockStatus = iota
	UnlockAlreadySaved
	UnlockInsufficientCredits
	UnlockNotFound
	UnlockError
)

func (s UnlockStatus) String() string {
	switch s {
	case UnlockSaved:
		return "saved"
	case UnlockAlreadySaved:
		return "already_saved"
	case UnlockInsufficientCredits:
		return "insufficient_credits"
	case UnlockNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// UnlockOutcome reports what an unlock attempt did. Balance carries the new
// balance on UnlockSaved and the untouched balance on
// UnlockInsufficientCredits; Cost is the price that was (or would have been)
// charged.
type UnlockOutcome struct {
	Status  UnlockStatus
	Balance float64
	Cost    float64
	Err     error
}

// UnlockEngine atomically couples pricing, the ledger debit and the saved
// snapshot insert. A debit never commits without its snapshot and vice versa.
type UnlockEngine struct {
	db        txBeginner
	importers unlockCatalog
	credits   unlockLedger
	saved     unlockSnapshots
	metrics   *metrics.Metrics
}

func NewUnlockEngine(db txBeginner, importers unlockCatalog,
	credits unlockLedger, saved unlockSnapshots,
	m *metrics.Metrics) *UnlockEngine {
	return &UnlockEngine{db: db, importers: importers, credits: credits, saved: saved, metrics: m}
}

// Unlock re-reads the authoritative catalog row by name, then runs the unlock
// protocol in one transaction: lock the balance, check for a prior unlock,
// insert the snapshot, debit. It never retries; the caller may invoke again
// after an error.
func (e *UnlockEngine) Unlock(ctx context.Context, userID int64, importerName string) UnlockOutcome {
	outcome := e.unlock(ctx, userID, importerName)
	if e.metrics != nil {
		e.metrics.Unlocks.WithLabelValues(outcome.Status.String()).Inc()
	}
	return outcome
}

func (e *UnlockEngine) unlock(ctx context.Context, userID int64, importerName string) UnlockOutcome {
	imp, err := e.importers.GetByName(ctx, importerName)
	if errors.Is(err, repository.ErrNotFound) {
		return UnlockOutcome{Status: UnlockNotFound, Err: err}
	}
	if err != nil {
		return UnlockOutcome{Status: UnlockError, Err: err}
	}

	display := imp.ToDisplay()
	cost := Price(display)
	if cost < MinUnlockPrice {
		logger.Log.Error("pricing anomaly, clamping to floor",
			zap.String("importer", imp.Name), zap.Float64("cost", cost))
		cost = MinUnlockPrice
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}
	defer tx.Rollback(ctx)

	balance, hasRow, err := e.credits.BalanceForUpdateTx(ctx, tx, userID)
	if err != nil {
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}
	if !hasRow || balance < cost {
		return UnlockOutcome{Status: UnlockInsufficientCredits, Balance: balance, Cost: cost}
	}

	exists, err := e.saved.ExistsTx(ctx, tx, userID, imp.Name)
	if err != nil {
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}
	if exists {
		return UnlockOutcome{Status: UnlockAlreadySaved, Balance: balance, Cost: cost}
	}

	snapshot := entities.SavedContact{
		UserID:             userID,
		ImporterName:       imp.Name,
		Country:            display.Country,
		Phone:              display.Contact,
		Email:              display.Email,
		Website:            display.Website,
		WAAvailability:     display.WAAvailable,
		HSCode:             display.HSCode,
		ProductDescription: display.ProductDescription,
	}
	if err := e.saved.InsertTx(ctx, tx, snapshot); err != nil {
		// The unique constraint backstops a concurrent unlock that
		// committed between our lock and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return UnlockOutcome{Status: UnlockAlreadySaved, Balance: balance, Cost: cost}
		}
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}

	newBalance, debited, err := e.credits.DebitTx(ctx, tx, userID, cost)
	if err != nil {
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}
	if !debited {
		// Cannot happen while we hold the row lock with balance >= cost;
		// roll back rather than save for free.
		logger.Log.Error("debit rejected under lock",
			zap.Int64("user_id", userID), zap.String("importer", imp.Name))
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: errors.New("debit rejected")}
	}

	if err := tx.Commit(ctx); err != nil {
		return UnlockOutcome{Status: UnlockError, Cost: cost, Err: err}
	}
	return UnlockOutcome{Status: UnlockSaved, Balance: newBalance, Cost: cost}
}
