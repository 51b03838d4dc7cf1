package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eximbot/internal/entities"
)

// SavedContactRepository owns saved_contacts. Inserts happen only through the
// unlock engine's transaction.
type SavedContactRepository struct {
	db *pgxpool.Pool
}

func NewSavedContactRepository(db *pgxpool.Pool) *SavedContactRepository {
	return &SavedContactRepository{db: db}
}

// List returns the user's unlocked contacts, newest first.
func (r *SavedContactRepository) List(ctx context.Context, userID int64) ([]entities.SavedContact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, importer_name, COALESCE(country, ''), COALESCE(phone, ''),
		       COALESCE(email, ''), COALESCE(website, ''), wa_availability,
		       COALESCE(hs_code, ''), COALESCE(product_description, ''), saved_at
		FROM saved_contacts
		WHERE user_id = $1
		ORDER BY saved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []entities.SavedContact{}
	for rows.Next() {
		var sc entities.SavedContact
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.ImporterName, &sc.Country, &sc.Phone,
			&sc.Email, &sc.Website, &sc.WAAvailability, &sc.HSCode, &sc.ProductDescription, &sc.SavedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, sc)
	}
	return contacts, rows.Err()
}

// Names returns the set of importer names the user has unlocked, used to
// decide which search results render unredacted.
func (r *SavedContactRepository) Names(ctx context.Context, userID int64) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		"SELECT importer_name FROM saved_contacts WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

// ExistsTx checks for a prior unlock of (user, importer) inside the caller's
// transaction.
func (r *SavedContactRepository) ExistsTx(ctx context.Context, tx pgx.Tx, userID int64, importerName string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM saved_contacts WHERE user_id = $1 AND importer_name = $2)",
		userID, importerName).Scan(&exists)
	return exists, err
}

// InsertTx writes the unlocked snapshot inside the caller's transaction.
// A duplicate (user, importer) insert surfaces as ErrDuplicate.
func (r *SavedContactRepository) InsertTx(ctx context.Context, tx pgx.Tx, sc entities.SavedContact) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO saved_contacts (user_id, importer_name, country, phone, email, website, wa_availability, hs_code, product_description)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), NULLIF($9, ''))
	`, sc.UserID, sc.ImporterName, sc.Country, sc.Phone, sc.Email, sc.Website,
		sc.WAAvailability, sc.HSCode, sc.ProductDescription)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
