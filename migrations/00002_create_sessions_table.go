package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsTable, downCreateSessionsTable)
}

func upCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE sessions (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  session_date TIMESTAMP WITH TIME ZONE NOT NULL,
	  date_str TEXT,
	  start_time TEXT NOT NULL,
	  duration INTEGER NOT NULL CHECK (duration > 0),
	  sport TEXT NOT NULL,
	  state CHAR(2) NOT NULL,
	  city TEXT NOT NULL,
	  cost DOUBLE PRECISION NOT NULL CHECK (cost > 0),
	  booked BOOLEAN NOT NULL DEFAULT false,
	  coach_note TEXT NOT NULL DEFAULT '',
	  coach_name TEXT NOT NULL,
	  coach_email TEXT NOT NULL,
	  coach_experience TEXT NOT NULL,
	  coach_user_id TEXT,
	  player_name TEXT,
	  player_email TEXT,
	  player_phone_number TEXT,
	  player_age INTEGER,
	  player_skill TEXT,
	  specific_goals TEXT,
	  additional_comments TEXT,
	  player_user_id TEXT,
	  created_at BIGINT NOT NULL,
	  CHECK (booked = (player_name IS NOT NULL))
	);

	CREATE INDEX idx_sessions_owner_date ON sessions(coach_user_id, date_str);
	CREATE INDEX idx_sessions_discovery ON sessions(sport, state, city, date_str);
	CREATE INDEX idx_sessions_player ON sessions(player_user_id);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions;`)
	return err
}
