package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/db"
	"github.com/thatsimonsguy/hydro-controller/internal/clock"
	"github.com/thatsimonsguy/hydro-controller/internal/controllers/lightcontroller"
	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
	"github.com/thatsimonsguy/hydro-controller/system/shutdown"
)

const (
	maskedValue = "********"
	// gives the reboot response time to reach the client
	restartDelay = 500 * time.Millisecond
)

type Server struct {
	db    *sql.DB
	light *lightcontroller.Light
	clock clock.Clock

	// held across each store write and the matching schedule swap so the
	// stored hours and the running schedule cannot diverge
	configMu sync.Mutex
	restart  func()
}

type StatusResponse struct {
	Time         string `json:"time"`
	Synchronized bool   `json:"synchronized"`
	Hour         *int   `json:"hour,omitempty"`
	Light        string `json:"light"`
	LightKnown   bool   `json:"light_known"`
	Schedule     string `json:"schedule"`
}

type ScheduleResponse struct {
	Hours  []int            `json:"hours"`
	Ranges []schedule.Range `json:"ranges"`
	Spec   string           `json:"spec"`
}

type ScheduleRequest struct {
	Hours *[]int  `json:"hours,omitempty"`
	Spec  *string `json:"spec,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(database *sql.DB, light *lightcontroller.Light, wall clock.Clock) *Server {
	return &Server{
		db:      database,
		light:   light,
		clock:   wall,
		restart: shutdown.Shutdown,
	}
}

// Handler returns the routed mux wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/reboot", s.handleReboot)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	now := s.clock.Now().UTC()
	status := s.light.Status()

	resp := StatusResponse{
		Time:         now.Format(time.RFC3339),
		Synchronized: clock.Synchronized(now),
		Light:        status.Level.String(),
		LightKnown:   status.Known,
		Schedule:     status.Schedule.String(),
	}
	if resp.Synchronized {
		hour := now.Hour()
		resp.Hour = &hour
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSchedule(w, r)
	case http.MethodPut:
		s.setSchedule(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) getSchedule(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, scheduleResponse(s.light.Schedule()))
}

func (s *Server) setSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var (
		sched schedule.Schedule
		err   error
	)
	switch {
	case req.Hours != nil && req.Spec != nil:
		s.writeError(w, http.StatusBadRequest, "Provide either hours or spec, not both")
		return
	case req.Hours != nil:
		sched, err = schedule.Hours(*req.Hours...)
	case req.Spec != nil:
		sched, err = schedule.Parse(*req.Spec)
	default:
		s.writeError(w, http.StatusBadRequest, "Provide hours or spec")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.configMu.Lock()
	if err := db.PutSetting(s.db, db.KeyLightHours, sched.HourList()); err != nil {
		s.configMu.Unlock()
		log.Error().Err(err).Str("schedule", sched.String()).Msg("Failed to persist light schedule")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.light.ReplaceSchedule(sched)
	s.configMu.Unlock()

	log.Info().Str("schedule", sched.String()).Msg("Light schedule updated via API")
	s.writeJSON(w, http.StatusOK, scheduleResponse(sched))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSettings(w, r)
	case http.MethodPost:
		s.postSettings(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	settings, err := db.GetAllSettings(s.db)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, maskSettings(settings))
}

// postSettings accepts the configuration form. Repeated keys (one checkbox per
// hour) are joined with commas and stored as submitted.
func (s *Server) postSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	values := make(map[string]string, len(r.PostForm))
	var unknown []string
	for key, vals := range r.PostForm {
		if !db.IsAllowedKey(key) {
			unknown = append(unknown, key)
			continue
		}
		values[key] = strings.Join(vals, ",")
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		s.writeError(w, http.StatusBadRequest, "Unknown settings: "+strings.Join(unknown, ", "))
		return
	}
	if len(values) == 0 {
		s.writeError(w, http.StatusBadRequest, "No settings provided")
		return
	}

	s.configMu.Lock()
	if err := db.PutSettings(s.db, values); err != nil {
		s.configMu.Unlock()
		log.Error().Err(err).Msg("Failed to persist settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if hours, ok := values[db.KeyLightHours]; ok {
		s.light.ReplaceSchedule(schedule.ParseOrEmpty(hours))
	}
	s.configMu.Unlock()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	log.Info().Strs("keys", keys).Msg("Settings updated via form")

	s.writeJSON(w, http.StatusOK, maskSettings(values))
}

// handleReboot exits the process after responding; systemd brings it back.
func (s *Server) handleReboot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	log.Warn().Str("remote", r.RemoteAddr).Msg("Restart requested via API")
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "restarting"})

	go func() {
		time.Sleep(restartDelay)
		s.restart()
	}()
}

func scheduleResponse(sched schedule.Schedule) ScheduleResponse {
	return ScheduleResponse{
		Hours:  sched.Hours(),
		Ranges: sched.RangesOf(),
		Spec:   sched.String(),
	}
}

func maskSettings(settings map[string]string) map[string]string {
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		if k == db.KeyWifiPass && v != "" {
			v = maskedValue
		}
		out[k] = v
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
