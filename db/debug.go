package db

import (
	"fmt"

	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
)

// SetScheduleCLI validates hours and stores them as the form would.
func SetScheduleCLI(dbPath, hours string) (schedule.Schedule, error) {
	sched, err := schedule.Parse(hours)
	if err != nil {
		return schedule.Empty(), fmt.Errorf("invalid hours: %w", err)
	}

	conn, err := Open(dbPath)
	if err != nil {
		return schedule.Empty(), err
	}
	defer conn.Close()

	if err := PutSetting(conn, KeyLightHours, sched.HourList()); err != nil {
		return schedule.Empty(), err
	}
	return sched, nil
}

func GetScheduleCLI(dbPath string, fallback schedule.Schedule) (schedule.Schedule, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return schedule.Empty(), err
	}
	defer conn.Close()
	return LoadSchedule(conn, fallback)
}

func SetSettingCLI(dbPath, key, value string) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()
	return PutSetting(conn, key, value)
}

func GetSettingsCLI(dbPath string) (map[string]string, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return GetAllSettings(conn)
}
