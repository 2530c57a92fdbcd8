package config

import (
	"os"
	"strings"
	"time"
)

const (
	monitorWorkersEnv           = "MONITOR_WORKERS"
	monitorDedupWindowHoursEnv  = "MONITOR_DEDUP_WINDOW_HOURS"
	monitorTimezoneEnv          = "MONITOR_TIMEZONE"
	monitorRunTimeoutSecondsEnv = "MONITOR_RUN_TIMEOUT_SECONDS"
	jurisdictionRulesPathEnv    = "JURISDICTION_RULES_PATH"
	defaultBusinessDaysEnv      = "DEFAULT_BUSINESS_DAYS"

	defaultMonitorWorkers           = 4
	defaultMonitorDedupWindowHours  = 24
	defaultMonitorRunTimeoutSeconds = 300
	defaultBusinessDays             = 20
)

type MonitorConfig struct {
	Workers             int
	DedupWindow         time.Duration
	Location            *time.Location
	RunTimeout          time.Duration
	RulesPath           string
	DefaultBusinessDays int
}

func LoadMonitorConfig() (*MonitorConfig, error) {
	location := time.UTC
	if name := strings.TrimSpace(os.Getenv(monitorTimezoneEnv)); name != "" {
		loaded, err := time.LoadLocation(name)
		if err != nil {
			return nil, ErrInvalidTimezone
		}
		location = loaded
	}

	return &MonitorConfig{
		Workers:             positiveIntEnv(monitorWorkersEnv, defaultMonitorWorkers),
		DedupWindow:         time.Duration(positiveIntEnv(monitorDedupWindowHoursEnv, defaultMonitorDedupWindowHours)) * time.Hour,
		Location:            location,
		RunTimeout:          time.Duration(positiveIntEnv(monitorRunTimeoutSecondsEnv, defaultMonitorRunTimeoutSeconds)) * time.Second,
		RulesPath:           os.Getenv(jurisdictionRulesPathEnv),
		DefaultBusinessDays: positiveIntEnv(defaultBusinessDaysEnv, defaultBusinessDays),
	}, nil
}
