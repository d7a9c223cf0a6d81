package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	connectAttempts = 5
	connectDelay    = 3 * time.Second
)

// NewSQLite opens the embedded SQLite database file, retrying a bounded
// number of times with a fixed delay before giving up.
func NewSQLite(path string) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err = open(path)
		if err == nil {
			log.Info().Str("path", path).Msg("Connected to SQLite")
			return db, nil
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", connectAttempts).
			Msg("Failed to open database, retrying")

		if attempt < connectAttempts {
			time.Sleep(connectDelay)
		}
	}

	return nil, err
}

func open(path string) (*sqlx.DB, error) {
	// Pragmas go on the DSN so every pooled connection gets them;
	// _time_format makes the driver store time.Time in a format it can
	// read back.
	dsn := path +
		"?_time_format=sqlite" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Writes are serialized by SQLite; one connection avoids SQLITE_BUSY
	// under concurrent request handling.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection
func Close(db *sqlx.DB) {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing SQLite connection")
		} else {
			log.Info().Msg("SQLite connection closed")
		}
	}
}
