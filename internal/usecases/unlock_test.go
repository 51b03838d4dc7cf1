package usecases

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eximbot/internal/entities"
	"eximbot/internal/repository"
)

// fakeTx records the transaction outcome. Everything beyond Commit/Rollback
// panics via the embedded interface, which keeps the fakes honest about what
// the protocol actually touches.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.tx = &fakeTx{}
	return d.tx, nil
}

type fakeCatalog struct {
	importer *entities.Importer
	err      error
}

func (c *fakeCatalog) GetByName(ctx context.Context, name string) (*entities.Importer, error) {
	return c.importer, c.err
}

type fakeLedger struct {
	balance    float64
	hasRow     bool
	debitOK    bool
	debits     []float64
	credited   float64
	creditedTo int64
}

func (l *fakeLedger) BalanceForUpdateTx(ctx context.Context, tx pgx.Tx, userID int64) (float64, bool, error) {
	return l.balance, l.hasRow, nil
}

func (l *fakeLedger) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (float64, bool, error) {
	if !l.debitOK {
		return 0, false, nil
	}
	l.debits = append(l.debits, amount)
	l.balance -= amount
	return l.balance, true, nil
}

func (l *fakeLedger) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount float64) (float64, error) {
	l.creditedTo = userID
	l.credited += amount
	l.balance += amount
	return l.balance, nil
}

type fakeSnapshots struct {
	existing  map[string]struct{}
	insertErr error
	inserted  []entities.SavedContact
}

func (s *fakeSnapshots) ExistsTx(ctx context.Context, tx pgx.Tx, userID int64, importerName string) (bool, error) {
	_, ok := s.existing[importerName]
	return ok, nil
}

func (s *fakeSnapshots) InsertTx(ctx context.Context, tx pgx.Tx, sc entities.SavedContact) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, sc)
	return nil
}

func waImporter() *entities.Importer {
	return &entities.Importer{
		ID:             7,
		Name:           "Ocean Foods Ltd",
		Country:        "Japan",
		Phone:          "+81 3 1234",
		WAAvailability: "Available",
	}
}

func TestUnlockSavedDebitsAndCommits(t *testing.T) {
	db := &fakeDB{}
	ledger := &fakeLedger{balance: 5.0, hasRow: true, debitOK: true}
	snaps := &fakeSnapshots{}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()}, ledger, snaps, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockSaved, outcome.Status)
	assert.Equal(t, 3.0, outcome.Cost)
	assert.Equal(t, 2.0, outcome.Balance)
	assert.Equal(t, []float64{3.0}, ledger.debits)
	require.Len(t, snaps.inserted, 1)
	assert.Equal(t, int64(9), snaps.inserted[0].UserID)
	assert.Equal(t, "Ocean Foods Ltd", snaps.inserted[0].ImporterName)
	assert.True(t, db.tx.committed)
}

func TestUnlockInsufficientCreditsLeavesBalanceUntouched(t *testing.T) {
	db := &fakeDB{}
	ledger := &fakeLedger{balance: 1.0, hasRow: true, debitOK: true}
	snaps := &fakeSnapshots{}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()}, ledger, snaps, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockInsufficientCredits, outcome.Status)
	assert.Equal(t, 1.0, outcome.Balance)
	assert.Equal(t, 3.0, outcome.Cost)
	assert.Empty(t, ledger.debits)
	assert.Empty(t, snaps.inserted)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestUnlockNoBalanceRowIsInsufficient(t *testing.T) {
	db := &fakeDB{}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()},
		&fakeLedger{hasRow: false}, &fakeSnapshots{}, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockInsufficientCredits, outcome.Status)
	assert.Equal(t, 0.0, outcome.Balance)
	assert.False(t, db.tx.committed)
}

func TestUnlockAlreadySavedChargesNothing(t *testing.T) {
	db := &fakeDB{}
	ledger := &fakeLedger{balance: 5.0, hasRow: true, debitOK: true}
	snaps := &fakeSnapshots{existing: map[string]struct{}{"Ocean Foods Ltd": {}}}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()}, ledger, snaps, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockAlreadySaved, outcome.Status)
	assert.Empty(t, ledger.debits)
	assert.Empty(t, snaps.inserted)
	assert.False(t, db.tx.committed)
}

func TestUnlockDuplicateInsertReportsAlreadySaved(t *testing.T) {
	// A concurrent unlock committed between our lock and the insert; the
	// unique key surfaces it and no debit must follow.
	db := &fakeDB{}
	ledger := &fakeLedger{balance: 5.0, hasRow: true, debitOK: true}
	snaps := &fakeSnapshots{insertErr: repository.ErrDuplicate}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()}, ledger, snaps, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockAlreadySaved, outcome.Status)
	assert.Empty(t, ledger.debits)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestUnlockDebitRejectedRollsBack(t *testing.T) {
	db := &fakeDB{}
	ledger := &fakeLedger{balance: 5.0, hasRow: true, debitOK: false}
	snaps := &fakeSnapshots{}
	engine := NewUnlockEngine(db, &fakeCatalog{importer: waImporter()}, ledger, snaps, nil)

	outcome := engine.Unlock(context.Background(), 9, "Ocean Foods Ltd")

	assert.Equal(t, UnlockError, outcome.Status)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func TestUnlockNotFoundSkipsTransaction(t *testing.T) {
	db := &fakeDB{}
	engine := NewUnlockEngine(db, &fakeCatalog{err: repository.ErrNotFound},
		&fakeLedger{}, &fakeSnapshots{}, nil)

	outcome := engine.Unlock(context.Background(), 9, "Nobody Ltd")

	assert.Equal(t, UnlockNotFound, outcome.Status)
	assert.Nil(t, db.tx)
}

func TestUnlockStatusString(t *testing.T) {
	assert.Equal(t, "saved", UnlockSaved.String())
	assert.Equal(t, "already_saved", UnlockAlreadySaved.String())
	assert.Equal(t, "insufficient_credits", UnlockInsufficientCredits.String())
	assert.Equal(t, "not_found", UnlockNotFound.String())
	assert.Equal(t, "error", UnlockError.String())
}
