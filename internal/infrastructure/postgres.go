package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// TLS is mandatory. A nil TLSConfig means sslmode=disable; stripping
	// the fallbacks removes the plaintext retry that sslmode=prefer allows.
	if config.ConnConfig.TLSConfig == nil {
		return nil, fmt.Errorf("database connection must use TLS (sslmode=require at minimum)")
	}
	config.ConnConfig.Fallbacks = nil

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 5 * time.Minute
	config.ConnConfig.ConnectTimeout = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema; a bootstrap failure aborts startup.
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Importer catalog
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS importers (
			id SERIAL PRIMARY KEY,
			role TEXT,
			product TEXT,
			name TEXT NOT NULL,
			country TEXT,
			phone TEXT,
			website TEXT,
			email_1 TEXT,
			email_2 TEXT,
			last_contact TEXT,
			status TEXT,
			wa_availability TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create importers table: %w", err)
	}
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_importers_name ON importers (LOWER(name));")
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_importers_product ON importers (LOWER(product));")

	// Per-user credit balances
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_credits (
			user_id BIGINT PRIMARY KEY,
			credits NUMERIC(10, 1) NOT NULL DEFAULT 0 CHECK (credits >= 0),
			has_redeemed_free_credits BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create user_credits table: %w", err)
	}

	// Running installations may predate the free-credits flag.
	p.Pool.Exec(ctx, "ALTER TABLE user_credits ADD COLUMN IF NOT EXISTS has_redeemed_free_credits BOOLEAN NOT NULL DEFAULT FALSE;")

	// Unlocked contact snapshots
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS saved_contacts (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			importer_name TEXT NOT NULL,
			country TEXT,
			phone TEXT,
			email TEXT,
			website TEXT,
			wa_availability BOOLEAN NOT NULL DEFAULT FALSE,
			hs_code TEXT,
			product_description TEXT,
			saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, importer_name)
		);
	`)
	if err != nil {
		return fmt.Errorf("create saved_contacts table: %w", err)
	}
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_saved_contacts_user ON saved_contacts (user_id, saved_at DESC);")

	// Manual top-up orders
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS credit_orders (
			order_id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			credits INT NOT NULL,
			amount INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			fulfilled_at TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create credit_orders table: %w", err)
	}
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_credit_orders_status ON credit_orders (status, created_at DESC);")

	// Command usage bookkeeping
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_command_stats (
			user_id BIGINT NOT NULL,
			command TEXT NOT NULL,
			usage_count INT NOT NULL DEFAULT 0,
			last_used TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, command)
		);
	`)
	if err != nil {
		return fmt.Errorf("create user_command_stats table: %w", err)
	}

	// Dashboard accounts for the admin panel
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS admin_users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			telegram_id BIGINT NOT NULL DEFAULT 0,
			role VARCHAR(20) DEFAULT 'admin',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create admin_users table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
