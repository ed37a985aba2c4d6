package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/squareland/pinger/internal/ping"
)

// HistoryDatabase stores one row per poll attempt per target.
type HistoryDatabase struct {
	db *Database
}

// Sample is a single recorded poll result. Failed polls have Online false
// and carry the error text; the status columns are then zero values.
type Sample struct {
	ID            int64     `json:"id"`
	Target        string    `json:"target"`
	Address       string    `json:"address"`
	Timestamp     time.Time `json:"timestamp"`
	Online        bool      `json:"online"`
	MOTD          string    `json:"motd,omitempty"`
	Protocol      int16     `json:"protocol,omitempty"`
	ServerVersion string    `json:"server_version,omitempty"`
	Players       uint16    `json:"players"`
	MaxPlayers    uint16    `json:"max_players"`
	RTTMillis     int64     `json:"rtt_ms"`
	Error         string    `json:"error,omitempty"`
}

// NewHistoryDatabase creates and initializes the ping history database.
func NewHistoryDatabase(dbPath string) (*HistoryDatabase, error) {
	database, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	hdb := &HistoryDatabase{db: database}
	if err := hdb.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return hdb, nil
}

// migrate creates the database schema.
func (hdb *HistoryDatabase) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS ping_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target TEXT NOT NULL,
			address TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			online INTEGER NOT NULL,
			motd TEXT NOT NULL DEFAULT '',
			protocol INTEGER NOT NULL DEFAULT 0,
			server_version TEXT NOT NULL DEFAULT '',
			players INTEGER NOT NULL DEFAULT 0,
			max_players INTEGER NOT NULL DEFAULT 0,
			rtt_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_history_target_ts
			ON ping_history (target, timestamp);
	`

	if _, err := hdb.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// RecordSuccess inserts a row for a successful poll.
func (hdb *HistoryDatabase) RecordSuccess(target, address string, status *ping.Status, rtt time.Duration) error {
	var protocol int16
	var serverVersion string
	if status.Version != nil {
		protocol = status.Version.Protocol
		serverVersion = status.Version.Server
	}

	_, err := hdb.db.Exec(`
		INSERT INTO ping_history
			(target, address, timestamp, online, motd, protocol, server_version, players, max_players, rtt_ms)
		VALUES (?, ?, ?, 1, ?, ?, ?, ?, ?, ?)`,
		target, address, time.Now().UTC(), status.MOTD, protocol, serverVersion,
		status.Online.Current, status.Online.Max, rtt.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record sample for %s: %w", target, err)
	}
	return nil
}

// RecordFailure inserts a row for a failed poll.
func (hdb *HistoryDatabase) RecordFailure(target, address string, pollErr error) error {
	_, err := hdb.db.Exec(`
		INSERT INTO ping_history (target, address, timestamp, online, error)
		VALUES (?, ?, ?, 0, ?)`,
		target, address, time.Now().UTC(), pollErr.Error(),
	)
	if err != nil {
		return fmt.Errorf("failed to record failure for %s: %w", target, err)
	}
	return nil
}

// Recent returns up to limit samples for a target, newest first.
func (hdb *HistoryDatabase) Recent(target string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := hdb.db.Query(`
		SELECT id, target, address, timestamp, online, motd, protocol,
		       server_version, players, max_players, rtt_ms, error
		FROM ping_history
		WHERE target = ?
		ORDER BY timestamp DESC
		LIMIT ?`,
		target, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", target, err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		if err := rows.Scan(&s.ID, &s.Target, &s.Address, &s.Timestamp, &s.Online,
			&s.MOTD, &s.Protocol, &s.ServerVersion, &s.Players, &s.MaxPlayers,
			&s.RTTMillis, &s.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// Prune deletes samples older than the retention window and returns the
// number of rows removed.
func (hdb *HistoryDatabase) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	result, err := hdb.db.Exec("DELETE FROM ping_history WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		log.Debug().Int64("rows", removed).Msg("pruned old history samples")
	}
	return removed, nil
}

// Close closes the underlying database.
func (hdb *HistoryDatabase) Close() error {
	return hdb.db.Close()
}
