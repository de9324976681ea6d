package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thatsimonsguy/hydro-controller/internal/config"
	"github.com/thatsimonsguy/hydro-controller/internal/pinctrl"
)

var execCommand = exec.Command

// WriteStartupScript writes the boot script that puts the pins in their safe
// state before the controller starts: light driven low, button pulled to its
// released level.
func WriteStartupScript(cfg config.Config) error {
	if cfg.GPIO.LightPin == nil || cfg.GPIO.ButtonPin == nil {
		return fmt.Errorf("button and light pins must be configured")
	}

	pull := "pu"
	if cfg.GPIO.ButtonActiveHigh {
		pull = "pd"
	}

	lines := []string{
		"#!/bin/bash",
		"",
		"# Hydroponics GPIO pin configuration at boot",
		"",
		"# light",
		fmt.Sprintf("pinctrl set %d op pn %s", *cfg.GPIO.LightPin, pinctrl.DriveArg(false)),
		"",
		"# button",
		fmt.Sprintf("pinctrl set %d ip %s", *cfg.GPIO.ButtonPin, pull),
		"",
	}

	contents := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(cfg.BootScriptFilePath, []byte(contents), 0755)
}

func InstallStartupService(cfg config.Config) error {
	unitContents := fmt.Sprintf(`[Unit]
Description=Configure GPIO pins at boot
After=network.target

[Service]
Type=oneshot
Environment=PATH=/usr/local/bin:/usr/bin:/bin
ExecStart=%s
RemainAfterExit=true

[Install]
WantedBy=multi-user.target
`, cfg.BootScriptFilePath)

	return os.WriteFile(cfg.OSServicePath, []byte(unitContents), 0644)
}

func InstallControllerService(cfg config.Config, execPath string) error {
	gpioUnitName := filepath.Base(cfg.OSServicePath)

	args := []string{execPath, "-config-file", cfg.ConfigFile}
	if cfg.DBPath != "" {
		args = append(args, "-db", cfg.DBPath)
	}

	unit := fmt.Sprintf(`[Unit]
Description=Hydroponics light controller
After=%s time-sync.target
Requires=%s

[Service]
Type=simple
ExecStart=%s
Restart=always
RestartSec=5s

[Install]
WantedBy=multi-user.target
`, gpioUnitName, gpioUnitName, strings.Join(args, " "))

	return os.WriteFile(cfg.MainServicePath, []byte(unit), 0644)
}

func RunStartupScript(cfg config.Config) error {
	cmd := execCommand("/bin/bash", cfg.BootScriptFilePath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
