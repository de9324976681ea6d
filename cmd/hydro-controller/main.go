package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/db"
	"github.com/thatsimonsguy/hydro-controller/internal/api"
	"github.com/thatsimonsguy/hydro-controller/internal/button"
	"github.com/thatsimonsguy/hydro-controller/internal/clock"
	"github.com/thatsimonsguy/hydro-controller/internal/config"
	"github.com/thatsimonsguy/hydro-controller/internal/controllers/lightcontroller"
	"github.com/thatsimonsguy/hydro-controller/internal/datadog"
	"github.com/thatsimonsguy/hydro-controller/internal/gpio"
	"github.com/thatsimonsguy/hydro-controller/internal/logging"
	"github.com/thatsimonsguy/hydro-controller/internal/model"
	"github.com/thatsimonsguy/hydro-controller/internal/notifications"
	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
	"github.com/thatsimonsguy/hydro-controller/system/shutdown"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("config_file", cfg.ConfigFile).
		Str("db", cfg.DBPath).
		Msg("Starting hydroponics controller")

	metrics := datadog.New(cfg.EnableDatadog, cfg.DDAgentAddr, cfg.DDNamespace, cfg.DDTags)
	defer metrics.Close()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open settings database")
	}
	defer database.Close()

	fallback := schedule.ParseOrEmpty(cfg.DefaultLightHours)
	sched, err := db.LoadSchedule(database, fallback)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load light schedule, using default")
	}
	log.Info().Str("schedule", sched.String()).Msg("Loaded light schedule")

	gpio.SetSafeMode(cfg.SafeMode)
	if cfg.SafeMode {
		log.Warn().Msg("SAFE MODE ENABLED: GPIO writes are disabled system-wide")
	}

	buttonPin := model.GPIOPin{Number: *cfg.GPIO.ButtonPin, ActiveHigh: cfg.GPIO.ButtonActiveHigh}
	if cfg.GPIO.Backend == gpio.BackendPinctrl {
		if err := gpio.ValidateStartupPins(*cfg.GPIO.LightPin, buttonPin); err != nil {
			log.Fatal().Err(err).Msg("Refusing to start with pins outside their boot state")
		}
	}

	lines, err := gpio.Open(cfg.GPIO.Backend, cfg.GPIO.Chip, buttonPin, *cfg.GPIO.LightPin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open GPIO lines")
	}

	light := lightcontroller.NewLight(lines.Light, sched)
	if err := light.Force(model.Low); err != nil {
		log.Error().Err(err).Msg("Failed to drive light low at startup")
	}
	shutdown.SetSafeState(func() {
		if err := light.Force(model.Low); err != nil {
			log.Error().Err(err).Msg("Failed to drive light low on shutdown")
		}
		if err := lines.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release GPIO lines")
		}
	})

	wall := clock.UTC{}

	r := &reactions{
		db:       database,
		light:    light,
		clock:    wall,
		metrics:  metrics,
		fallback: fallback,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controller := lightcontroller.New(light, wall, lightcontroller.Options{
		UnsyncedPolicy:     lightcontroller.UnsyncedPolicy(cfg.UnsyncedPolicy),
		WriteFailurePolicy: lightcontroller.WriteFailurePolicy(cfg.WriteFailurePolicy),
		WriteRetries:       cfg.WriteRetries,
		OnEvaluate:         r.evaluated,
	})
	controller.Start(ctx)

	if cfg.APIPort > 0 {
		server := api.NewServer(database, light, wall)
		go func() {
			if err := server.Start(cfg.APIPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("REST API server stopped")
			}
		}()
	}

	if cfg.MQTTBroker != "" {
		go func() {
			p, err := notifications.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix)
			if err != nil {
				log.Warn().Err(err).Str("broker", cfg.MQTTBroker).Msg("MQTT unavailable, notifications disabled")
				return
			}
			r.setPublisher(p)
		}()
	}

	btn := button.New(lines.Button,
		button.WithPolarity(buttonPin.Polarity()),
		button.WithLongPress(time.Duration(cfg.LongPressMillis)*time.Millisecond),
		button.OnShortPress(r.shortPress()),
		button.OnLongPress(r.longPress()),
	)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(pollInterval(cfg.ButtonPollMillis))
	defer ticker.Stop()

	log.Info().
		Bool("metrics", metrics.Enabled()).
		Bool("api", cfg.APIPort > 0).
		Bool("mqtt", cfg.MQTTBroker != "").
		Str("backend", cfg.GPIO.Backend).
		Msg("Controller running")
	for {
		select {
		case sig := <-sigs:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			cancel()
			r.publisher().Close()
			metrics.Close()
			database.Close()
			shutdown.Shutdown()
			return
		case <-ticker.C:
			btn.Poll()
		}
	}
}
