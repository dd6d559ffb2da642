package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The unique indexes are the real duplicate guard under concurrent writers;
// the service-level pre-checks only exist for better error messages.
const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	registration_attribute TEXT NOT NULL DEFAULT '',
	version INT NOT NULL DEFAULT 1,
	date_of_registration TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS registrations_email_uniq
	ON registrations (LOWER(email));

CREATE TABLE IF NOT EXISTS meetups (
	id BIGSERIAL PRIMARY KEY,
	event TEXT NOT NULL,
	meetup_date TIMESTAMPTZ NOT NULL,
	registration_attribute TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS meetups_event_date_uniq
	ON meetups (LOWER(event), meetup_date);

CREATE TABLE IF NOT EXISTS meetup_registrations (
	meetup_id BIGINT NOT NULL REFERENCES meetups(id) ON DELETE CASCADE,
	registration_id BIGINT NOT NULL REFERENCES registrations(id) ON DELETE CASCADE,
	position INT NOT NULL,
	PRIMARY KEY (meetup_id, registration_id)
);
`

// EnsureSchema applies the idempotent DDL at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)

	return err
}
