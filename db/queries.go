package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
)

// GetSetting returns the stored value for key and whether it exists.
func GetSetting(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func GetAllSettings(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// LoadSchedule reads LIGHT_HOURS. A missing key yields fallback; a malformed
// value yields the empty schedule.
func LoadSchedule(db *sql.DB, fallback schedule.Schedule) (schedule.Schedule, error) {
	value, ok, err := GetSetting(db, KeyLightHours)
	if err != nil {
		return fallback, err
	}
	if !ok {
		return fallback, nil
	}
	return schedule.ParseOrEmpty(value), nil
}
