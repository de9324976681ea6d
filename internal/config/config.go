package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

type GPIO struct {
	Chip             string `json:"chip"`
	Backend          string `json:"backend"`
	ButtonPin        *int   `json:"button_pin"`
	ButtonActiveHigh bool   `json:"button_active_high"`
	LightPin         *int   `json:"light_pin"`
}

type Config struct {
	DBPath     string
	ConfigFile string
	LogLevel   zerolog.Level

	LogFile  string `json:"log_file"`
	SafeMode bool   `json:"safe_mode"`

	GPIO GPIO `json:"gpio"`

	ButtonPollMillis int `json:"button_poll_millis"`
	LongPressMillis  int `json:"long_press_millis"`

	UnsyncedPolicy     string `json:"unsynced_policy"`
	WriteFailurePolicy string `json:"write_failure_policy"`
	WriteRetries       int    `json:"write_retries"`
	DefaultLightHours  string `json:"default_light_hours"`

	APIPort int `json:"api_port"`

	MQTTBroker      string `json:"mqtt_broker"`
	MQTTClientID    string `json:"mqtt_client_id"`
	MQTTTopicPrefix string `json:"mqtt_topic_prefix"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`

	BootScriptFilePath string `json:"boot_script_file_path"`
	OSServicePath      string `json:"os_service_path"`
	MainServicePath    string `json:"main_service_path"`
}

func Load() Config {
	var dbPath, configFile, logLevel string

	flag.StringVar(&dbPath, "db", "data/hydro.db", "Path to the settings database")
	flag.StringVar(&configFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := LoadFile(configFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	cfg.DBPath = dbPath
	cfg.LogLevel = parseLogLevel(logLevel)

	cfg.validate()
	return cfg
}

// LoadFile decodes a config file and applies defaults. It does not validate.
func LoadFile(path string) (Config, error) {
	// api_port is preset so an explicit 0 can disable the API
	cfg := Config{APIPort: 8080}

	file, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ConfigFile = path
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = "gpiochip0"
	}
	if cfg.GPIO.Backend == "" {
		cfg.GPIO.Backend = "gpiocdev"
	}
	if cfg.ButtonPollMillis == 0 {
		cfg.ButtonPollMillis = 10
	}
	if cfg.LongPressMillis == 0 {
		cfg.LongPressMillis = 500
	}
	if cfg.UnsyncedPolicy == "" {
		cfg.UnsyncedPolicy = "force_off"
	}
	if cfg.WriteFailurePolicy == "" {
		cfg.WriteFailurePolicy = "ignore"
	}
	if cfg.WriteRetries == 0 {
		cfg.WriteRetries = 3
	}
	if cfg.DefaultLightHours == "" {
		cfg.DefaultLightHours = "0-11,20-23"
	}
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = "hydro-controller"
	}
	if cfg.MQTTTopicPrefix == "" {
		cfg.MQTTTopicPrefix = "hydro"
	}
	if cfg.DDAgentAddr == "" {
		cfg.DDAgentAddr = "127.0.0.1:8125"
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "hydro."
	}
	if cfg.BootScriptFilePath == "" {
		cfg.BootScriptFilePath = "/usr/local/bin/hydro-gpio-init.sh"
	}
	if cfg.OSServicePath == "" {
		cfg.OSServicePath = "/etc/systemd/system/hydro-gpio-init.service"
	}
	if cfg.MainServicePath == "" {
		cfg.MainServicePath = "/etc/systemd/system/hydro-controller.service"
	}
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) validate() {
	var (
		missingFields []string
		usedPins      = map[int]string{}
		conflicts     []string
		invalid       []string
	)

	v := reflect.ValueOf(cfg.GPIO)
	t := reflect.TypeOf(cfg.GPIO)

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Ptr {
			continue
		}
		fieldName := t.Field(i).Tag.Get("json")

		if field.IsNil() {
			missingFields = append(missingFields, "gpio."+fieldName)
			continue
		}

		pin := int(field.Elem().Int())
		if other, exists := usedPins[pin]; exists {
			conflicts = append(conflicts, fmt.Sprintf("gpio.%s and gpio.%s both use pin %d", fieldName, other, pin))
		} else {
			usedPins[pin] = fieldName
		}
	}

	if cfg.GPIO.Backend != "gpiocdev" && cfg.GPIO.Backend != "pinctrl" {
		invalid = append(invalid, "gpio.backend="+cfg.GPIO.Backend)
	}
	if cfg.UnsyncedPolicy != "force_off" && cfg.UnsyncedPolicy != "hold" {
		invalid = append(invalid, "unsynced_policy="+cfg.UnsyncedPolicy)
	}
	if cfg.WriteFailurePolicy != "ignore" && cfg.WriteFailurePolicy != "retry" {
		invalid = append(invalid, "write_failure_policy="+cfg.WriteFailurePolicy)
	}
	if cfg.ButtonPollMillis < 0 || cfg.LongPressMillis < 0 {
		invalid = append(invalid, "negative button timing")
	}

	if len(missingFields) > 0 {
		panic("Missing required GPIO config fields: " + strings.Join(missingFields, ", "))
	}
	if len(conflicts) > 0 {
		panic("Conflicting GPIO pins: " + strings.Join(conflicts, ", "))
	}
	if len(invalid) > 0 {
		panic("Invalid config values: " + strings.Join(invalid, ", "))
	}
}
