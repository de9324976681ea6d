package db

import (
	"database/sql"
	"fmt"
	"time"
)

// StartTransaction starts a new database transaction.
func StartTransaction(db *sql.DB) (*sql.Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// CommitTransaction commits the given transaction.
func CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the given transaction.
func RollbackTransaction(tx *sql.Tx) {
	tx.Rollback()
}

func PutSettingWithTx(tx *sql.Tx, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	_, err := tx.Exec(`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

func PutSetting(db *sql.DB, key, value string) error {
	return PutSettings(db, map[string]string{key: value})
}

// PutSettings writes all values in one transaction; nothing is written if any
// key is rejected.
func PutSettings(db *sql.DB, values map[string]string) error {
	tx, err := StartTransaction(db)
	if err != nil {
		return err
	}
	for k, v := range values {
		if err := PutSettingWithTx(tx, k, v); err != nil {
			RollbackTransaction(tx)
			return err
		}
	}
	return CommitTransaction(tx)
}
