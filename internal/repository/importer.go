package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"eximbot/internal/entities"
	"eximbot/internal/logger"
)

// searchLimit caps every result set, category or free-text.
const searchLimit = 50

// searchStatementBudget bounds a single search statement.
const searchStatementBudget = 10 * time.Second

type ImporterRepository struct {
	db *pgxpool.Pool
}

func NewImporterRepository(db *pgxpool.Pool) *ImporterRepository {
	return &ImporterRepository{db: db}
}

// GetByName returns the authoritative catalog row for an importer name.
func (r *ImporterRepository) GetByName(ctx context.Context, name string) (*entities.Importer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(role, ''), COALESCE(product, ''), COALESCE(country, ''),
		       COALESCE(phone, ''), COALESCE(website, ''), COALESCE(email_1, ''), COALESCE(email_2, ''),
		       COALESCE(last_contact, ''), COALESCE(status, ''), COALESCE(wa_availability, '')
		FROM importers
		WHERE LOWER(name) = LOWER($1)
		LIMIT 1
	`, name)
	return scanImporter(row)
}

// GetByID returns the catalog row for a surrogate id.
func (r *ImporterRepository) GetByID(ctx context.Context, id int) (*entities.Importer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(role, ''), COALESCE(product, ''), COALESCE(country, ''),
		       COALESCE(phone, ''), COALESCE(website, ''), COALESCE(email_1, ''), COALESCE(email_2, ''),
		       COALESCE(last_contact, ''), COALESCE(status, ''), COALESCE(wa_availability, '')
		FROM importers
		WHERE id = $1
	`, id)
	return scanImporter(row)
}

func scanImporter(row pgx.Row) (*entities.Importer, error) {
	var imp entities.Importer
	err := row.Scan(&imp.ID, &imp.Name, &imp.Role, &imp.Product, &imp.Country,
		&imp.Phone, &imp.Website, &imp.Email1, &imp.Email2,
		&imp.LastContact, &imp.Status, &imp.WAAvailability)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// searchSelect is the shared skeleton for ranked candidate queries. $1 is the
// primary relevance pattern; %s is the candidate predicate. DISTINCT ON keeps
// the best-ranked row per name, then the outer ORDER applies the display rank.
const searchSelect = `
SELECT id, name, country, contact, email, website, wa_available, hs_code, product_description, contact_score, relevance_score
FROM (
	SELECT DISTINCT ON (name)
		id, name,
		COALESCE(country, '') AS country,
		COALESCE(phone, '') AS contact,
		COALESCE(email_1, '') AS email,
		COALESCE(website, '') AS website,
		COALESCE(wa_availability, '') = 'Available' AS wa_available,
		COALESCE(product, '') AS hs_code,
		COALESCE(role, '') AS product_description,
		CASE
			WHEN COALESCE(wa_availability, '') = 'Available' THEN 3
			WHEN COALESCE(phone, '') <> '' AND COALESCE(email_1, '') <> '' AND COALESCE(website, '') <> '' THEN 2
			ELSE 1
		END AS contact_score,
		CASE
			WHEN LOWER(name) LIKE $1 THEN 3
			WHEN LOWER(product) LIKE $1 THEN 2
			ELSE 1
		END AS relevance_score
	FROM importers
	WHERE (phone IS NOT NULL OR email_1 IS NOT NULL OR website IS NOT NULL)
	  AND %s
	ORDER BY name, wa_available DESC, contact_score DESC, relevance_score DESC
) ranked
ORDER BY wa_available DESC, contact_score DESC, relevance_score DESC, name ASC
LIMIT %d`

// likeEscaper neutralizes LIKE metacharacters in user tokens so a query of
// "%" or "_" cannot turn into a match-everything predicate.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildTextSearchSQL builds the free-text candidate query. Each group is one
// query token expanded through the synonym lexicon; groups are AND-ed, terms
// within a group are OR-ed across name, country, role and product. Every
// user-supplied substring travels as a bind parameter, escaped.
func buildTextSearchSQL(groups [][]string) (string, []any) {
	args := make([]any, 0, len(groups)*2+1)

	primary := ""
	if len(groups) > 0 && len(groups[0]) > 0 {
		primary = groups[0][0]
	}
	args = append(args, "%"+likeEscaper.Replace(primary)+"%")

	conds := make([]string, 0, len(groups))
	for _, group := range groups {
		alts := make([]string, 0, len(group))
		for _, term := range group {
			args = append(args, "%"+likeEscaper.Replace(term)+"%")
			n := len(args)
			alts = append(alts, fmt.Sprintf(
				"LOWER(name) LIKE $%d OR LOWER(country) LIKE $%d OR LOWER(role) LIKE $%d OR LOWER(product) LIKE $%d",
				n, n, n, n))
		}
		conds = append(conds, "("+strings.Join(alts, " OR ")+")")
	}

	return fmt.Sprintf(searchSelect, strings.Join(conds, " AND "), searchLimit), args
}

// buildCategorySearchSQL builds the fixed-predicate category query. Patterns
// already carry their wildcards and apply to product only; the category set
// is closed so the alternation shape is static while the patterns still bind
// as parameters.
func buildCategorySearchSQL(patterns []string) (string, []any) {
	args := make([]any, 0, len(patterns)+1)
	args = append(args, patterns[0])

	alts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		args = append(args, p)
		alts = append(alts, fmt.Sprintf("LOWER(product) LIKE $%d", len(args)))
	}

	return fmt.Sprintf(searchSelect, "("+strings.Join(alts, " OR ")+")", searchLimit), args
}

// SearchText runs the free-text candidate query for pre-expanded token groups.
func (r *ImporterRepository) SearchText(ctx context.Context, groups [][]string) ([]entities.DisplayContact, error) {
	if len(groups) == 0 {
		return []entities.DisplayContact{}, nil
	}
	sql, args := buildTextSearchSQL(groups)
	return r.runSearch(ctx, sql, args)
}

// SearchCategory runs the fixed-predicate query for a category's patterns.
func (r *ImporterRepository) SearchCategory(ctx context.Context, patterns []string) ([]entities.DisplayContact, error) {
	if len(patterns) == 0 {
		return []entities.DisplayContact{}, nil
	}
	sql, args := buildCategorySearchSQL(patterns)
	return r.runSearch(ctx, sql, args)
}

func (r *ImporterRepository) runSearch(ctx context.Context, sql string, args []any) ([]entities.DisplayContact, error) {
	ctx, cancel := context.WithTimeout(ctx, searchStatementBudget)
	defer cancel()

	var contacts []entities.DisplayContact
	err := withRetry(ctx, "importers.search", func() error {
		rows, err := r.db.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		contacts = contacts[:0]
		for rows.Next() {
			var c entities.DisplayContact
			if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Contact, &c.Email, &c.Website,
				&c.WAAvailable, &c.HSCode, &c.ProductDescription, &c.ContactScore, &c.RelevanceScore); err != nil {
				return err
			}
			contacts = append(contacts, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []entities.DisplayContact{}
	}
	return contacts, nil
}

// catalogHeaders are the expected bulk-file columns, matched case-insensitively.
var catalogHeaders = []string{
	"role", "product", "name", "country", "phone", "website",
	"e-mail 1", "e-mail 2", "last contact", "status", "wa availability",
}

// ParseCatalogRecords converts raw comma-separated records (header row first)
// into importer rows. Every field is trimmed, rows without a name are skipped
// and a missing WA Availability defaults to "Not Available".
func ParseCatalogRecords(records [][]string) ([]entities.Importer, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog file is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range []string{"name"} {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("catalog file missing %q column", h)
		}
	}

	field := func(row []string, key string) string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var importers []entities.Importer
	for _, row := range records[1:] {
		name := field(row, "name")
		if name == "" {
			continue
		}

		wa := field(row, "wa availability")
		if wa == "" {
			wa = "Not Available"
		}
		if wa != "Available" && wa != "Not Available" {
			logger.Log.Warn("unexpected wa_availability value in catalog",
				zap.String("importer", name), zap.String("value", wa))
		}

		importers = append(importers, entities.Importer{
			Role:           field(row, "role"),
			Product:        field(row, "product"),
			Name:           name,
			Country:        field(row, "country"),
			Phone:          field(row, "phone"),
			Website:        field(row, "website"),
			Email1:         field(row, "e-mail 1"),
			Email2:         field(row, "e-mail 2"),
			LastContact:    field(row, "last contact"),
			Status:         field(row, "status"),
			WAAvailability: wa,
		})
	}
	return importers, nil
}

// LoadDir truncates the catalog and reloads it from every *.csv file in dir,
// all inside one transaction.
func (r *ImporterRepository) LoadDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("scan data dir: %w", err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no catalog files in %s", dir)
	}

	var importers []entities.Importer
	for _, path := range paths {
		rows, err := readCatalogFile(path)
		if err != nil {
			return 0, err
		}
		importers = append(importers, rows...)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE importers RESTART IDENTITY"); err != nil {
		return 0, fmt.Errorf("truncate importers: %w", err)
	}

	for _, imp := range importers {
		_, err := tx.Exec(ctx, `
			INSERT INTO importers (role, product, name, country, phone, website, email_1, email_2, last_contact, status, wa_availability)
			VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11)
		`, imp.Role, imp.Product, imp.Name, imp.Country, imp.Phone, imp.Website,
			imp.Email1, imp.Email2, imp.LastContact, imp.Status, imp.WAAvailability)
		if err != nil {
			return 0, fmt.Errorf("insert importer %q: %w", imp.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(importers), nil
}

func readCatalogFile(path string) ([]entities.Importer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // bulk files contain ragged and empty lines
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	importers, err := ParseCatalogRecords(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return importers, nil
}
