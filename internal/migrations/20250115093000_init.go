package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE twitter_accounts (
		id SERIAL PRIMARY KEY,
		username VARCHAR NOT NULL UNIQUE,
		display_name VARCHAR,
		last_fetched TIMESTAMP WITH TIME ZONE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	CREATE TABLE categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR NOT NULL UNIQUE,
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	CREATE TABLE twitter_account_categories (
		twitter_account_id INTEGER NOT NULL REFERENCES twitter_accounts (id),
		category_id INTEGER NOT NULL REFERENCES categories (id),
		PRIMARY KEY (twitter_account_id, category_id)
	);
	CREATE TABLE tweets (
		id SERIAL PRIMARY KEY,
		twitter_id VARCHAR NOT NULL UNIQUE,
		account_id INTEGER REFERENCES twitter_accounts (id),
		category_id INTEGER REFERENCES categories (id),
		text TEXT,
		media_urls TEXT[],
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		inserted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return err
	}
	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.Exec(`
	DROP TABLE tweets;
	DROP TABLE twitter_account_categories;
	DROP TABLE categories;
	DROP TABLE twitter_accounts;
	`)
	if err != nil {
		return err
	}
	return nil
}
