package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/thatsimonsguy/hydro-controller/db"
	"github.com/thatsimonsguy/hydro-controller/internal/config"
	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
	"github.com/thatsimonsguy/hydro-controller/system/startup"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath, configFile, command, hours, key, value, execPath string
	flag.StringVar(&dbPath, "db", "data/hydro.db", "Path to the SQLite database file")
	flag.StringVar(&configFile, "config-file", "config.json", "Path to controller config file")
	flag.StringVar(&command, "cmd", "", "Command to run: get-schedule, set-schedule, get-settings, set-setting, write-boot-script, run-boot-script, install-services")
	flag.StringVar(&hours, "hours", "", "Light hours for set-schedule, e.g. 0-11,20-23")
	flag.StringVar(&key, "key", "", "Setting key for set-setting")
	flag.StringVar(&value, "value", "", "Setting value for set-setting")
	flag.StringVar(&execPath, "exec", "/usr/local/bin/hydro-controller", "Controller binary path for install-services")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of hydro-debug:")
		fmt.Println("  -db string\tPath to the SQLite database file (default 'data/hydro.db')")
		fmt.Println("  -config-file string\tPath to controller config file (default 'config.json')")
		fmt.Println("  -cmd string\tCommand to run: get-schedule, set-schedule, get-settings, set-setting, write-boot-script, run-boot-script, install-services")
		fmt.Println("  -hours string\tLight hours for set-schedule")
		fmt.Println("  -key string\tSetting key for set-setting (WIFI_SSID, WIFI_PASS, LIGHT_HOURS)")
		fmt.Println("  -value string\tSetting value for set-setting")
		fmt.Println("  -exec string\tController binary path for install-services")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "get-schedule":
		var sched schedule.Schedule
		fallback := schedule.Default()
		if cfg, cerr := config.LoadFile(configFile); cerr == nil {
			fallback = schedule.ParseOrEmpty(cfg.DefaultLightHours)
		}
		sched, err = db.GetScheduleCLI(dbPath, fallback)
		if err == nil {
			fmt.Printf("Light hours: %s\n", sched)
		}
	case "set-schedule":
		var sched schedule.Schedule
		sched, err = db.SetScheduleCLI(dbPath, hours)
		if err == nil {
			fmt.Printf("Light hours set to: %s\n", sched)
		}
	case "get-settings":
		var settings map[string]string
		settings, err = db.GetSettingsCLI(dbPath)
		if err == nil {
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s=%s\n", k, settings[k])
			}
		}
	case "set-setting":
		if key == "" {
			fmt.Println("Error: key is required")
			os.Exit(1)
		}
		err = db.SetSettingCLI(dbPath, key, value)
	case "write-boot-script":
		var cfg config.Config
		cfg, err = config.LoadFile(configFile)
		if err == nil {
			err = startup.WriteStartupScript(cfg)
		}
	case "run-boot-script":
		var cfg config.Config
		cfg, err = config.LoadFile(configFile)
		if err == nil {
			err = startup.RunStartupScript(cfg)
		}
	case "install-services":
		var cfg config.Config
		cfg, err = config.LoadFile(configFile)
		if err == nil {
			cfg.DBPath = dbPath
			err = startup.InstallStartupService(cfg)
		}
		if err == nil {
			err = startup.InstallControllerService(cfg, execPath)
		}
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
	fmt.Printf("Command %s completed successfully\n", command)
}
