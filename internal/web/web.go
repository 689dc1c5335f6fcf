package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"paircal/internal/config"
	appLog "paircal/internal/log"
	"paircal/internal/schedule"
	"paircal/internal/tz"
)

// Server provides the HTTP API and embedded UI for the session schedule.
// It owns the single process-wide timezone selection: each schedule request
// reads the selection once at the start of its recomputation and then works
// with plain values, so no further locking discipline is needed.
type Server struct {
	cfg     *config.Config
	table   []schedule.Session
	catalog *tz.Catalog
	debug   bool
	mux     *http.ServeMux

	// selMu guards selected, the current display zone identifier. It is
	// initialized to the detected default and only changes through an
	// explicit, validated selection.
	selMu    sync.Mutex
	selected string

	// now is the clock used for projections; overridable in tests.
	now func() time.Time
}

// embeddedStatic contains the built-in schedule UI: a single page with a
// timezone dropdown plus table and grid views, rendered from the JSON API.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server. The initial timezone selection is the
// configured zone if it resolves, otherwise the platform default.
func NewServer(cfg *config.Config, table []schedule.Session, catalog *tz.Catalog, debug bool) *Server {
	s := &Server{
		cfg:     cfg,
		table:   table,
		catalog: catalog,
		debug:   debug,
		mux:     http.NewServeMux(),
		now:     func() time.Time { return time.Now().UTC() },
	}

	s.selected = catalog.Default()
	if cfg.Timezone != "" {
		if _, err := catalog.Resolve(cfg.Timezone); err != nil {
			appLog.Error("configured timezone is invalid, using detected default", err,
				"timezone", cfg.Timezone, "default", s.selected)
		} else {
			s.selected = cfg.Timezone
		}
	}

	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health stays reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="paircal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/zones", s.handleZones)
	s.mux.HandleFunc("/api/timezone", s.handleTimezone)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
	s.mux.HandleFunc("/api/occurrences", s.handleOccurrences)
	s.mux.HandleFunc("/calendar.ics", s.handleICS)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// Everything else is the embedded static UI.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// zonesResponse is the JSON response shape for /api/zones.
type zonesResponse struct {
	Zones    []string `json:"zones"`
	Default  string   `json:"default"`
	Selected string   `json:"selected"`
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, zonesResponse{
		Zones:    s.catalog.Zones(),
		Default:  s.catalog.Default(),
		Selected: s.selection(),
	})
}

// selectionRequest is the JSON request body for PUT /api/timezone.
type selectionRequest struct {
	Timezone string `json:"timezone"`
}

// handleTimezone updates the process-wide timezone selection. An identifier
// the platform database does not recognize is rejected here, before any
// projection runs, and the previous valid selection stays in effect.
func (s *Server) handleTimezone(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, selectionRequest{Timezone: s.selection()})
		return
	case http.MethodPut, http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.catalog.Resolve(req.Timezone); err != nil {
		appLog.Error("rejecting unknown timezone selection", err, "timezone", req.Timezone)
		writeError(w, http.StatusBadRequest, "unknown timezone: "+req.Timezone)
		return
	}

	s.selMu.Lock()
	s.selected = req.Timezone
	s.selMu.Unlock()

	appLog.Info("timezone selection changed", "timezone", req.Timezone)
	writeJSON(w, http.StatusOK, selectionRequest{Timezone: req.Timezone})
}

// selection returns the current display zone identifier.
func (s *Server) selection() string {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	return s.selected
}

// rowDTO is one table row of the projected schedule.
type rowDTO struct {
	Host          string `json:"host"`
	DayLabel      string `json:"day_label"`
	TimeLabel     string `json:"time_label"`
	DurationLabel string `json:"duration_label"`
}

// blockDTO is one positioned block of the projected week grid.
type blockDTO struct {
	Host      string  `json:"host"`
	TimeLabel string  `json:"time_label"`
	Left      float64 `json:"left"`
	Width     float64 `json:"width"`
	Top       float64 `json:"top"`
	Height    float64 `json:"height"`
}

// scheduleResponse is the JSON response shape for /api/schedule.
type scheduleResponse struct {
	Timezone string     `json:"timezone"`
	Rows     []rowDTO   `json:"rows"`
	Blocks   []blockDTO `json:"blocks"`
}

// handleSchedule runs a full recomputation: project every session into the
// requested zone, sort, and emit both the table rows and the grid blocks.
// The result is intentionally never cached; the projection is cheap and a
// stale cache across timezone changes is a worse failure mode than redoing
// the work.
//
// GET /api/schedule?tz=Asia/Tokyo
//   - tz: optional IANA identifier overriding the stored selection for this
//     request only. Unknown values are rejected with 400.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		name = s.selection()
	}

	loc, err := s.catalog.Resolve(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone: "+name)
		return
	}

	now := s.now()
	occs, err := schedule.ProjectAll(s.table, loc, now)
	if err != nil {
		appLog.Error("schedule projection failed", err, "timezone", name)
		writeError(w, http.StatusInternalServerError, "failed to project schedule")
		return
	}

	resp := scheduleResponse{
		Timezone: name,
		Rows:     make([]rowDTO, 0, len(occs)),
		Blocks:   make([]blockDTO, 0, len(occs)),
	}
	for _, occ := range occs {
		resp.Rows = append(resp.Rows, rowDTO{
			Host:          occ.Session.Host,
			DayLabel:      occ.DayLabel(),
			TimeLabel:     occ.TimeLabel(),
			DurationLabel: schedule.FormatDuration(occ.DurationMinutes),
		})
		b := schedule.Layout(occ)
		resp.Blocks = append(resp.Blocks, blockDTO{
			Host:      occ.Session.Host,
			TimeLabel: occ.TimeLabel(),
			Left:      b.Left,
			Width:     b.Width,
			Top:       b.Top,
			Height:    b.Height,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// occurrenceDTO is one concrete upcoming calendar occurrence.
type occurrenceDTO struct {
	Host     string    `json:"host"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DayLabel string    `json:"day_label"`
	Duration string    `json:"duration"`
}

// occurrencesResponse is the JSON response shape for /api/occurrences.
type occurrencesResponse struct {
	Timezone    string          `json:"timezone"`
	Weeks       int             `json:"weeks"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}

// handleOccurrences lists the concrete calendar occurrences of every session
// over the next few weeks, in the requested zone.
//
// GET /api/occurrences?tz=Asia/Tokyo&weeks=4
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	name := q.Get("tz")
	if name == "" {
		name = s.selection()
	}
	loc, err := s.catalog.Resolve(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown timezone: "+name)
		return
	}

	weeks := parseIntDefault(q.Get("weeks"), 4)
	if weeks <= 0 {
		weeks = 4
	}
	if weeks > 26 {
		weeks = 26
	}

	occs, err := schedule.Upcoming(s.table, loc, s.now(), weeks)
	if err != nil {
		appLog.Error("occurrence expansion failed", err, "timezone", name, "weeks", weeks)
		writeError(w, http.StatusInternalServerError, "failed to expand occurrences")
		return
	}

	dtos := make([]occurrenceDTO, 0, len(occs))
	for _, occ := range occs {
		dtos = append(dtos, occurrenceDTO{
			Host:     occ.Session.Host,
			Start:    occ.Start,
			End:      occ.End,
			DayLabel: occ.DayLabel(),
			Duration: schedule.FormatDuration(occ.DurationMinutes),
		})
	}

	writeJSON(w, http.StatusOK, occurrencesResponse{
		Timezone:    name,
		Weeks:       weeks,
		Occurrences: dtos,
	})
}

// handleICS serves the session table as a subscribable iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	body, err := schedule.ICS(s.table, s.now())
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar feed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="paircal.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// handlePreview serves the last captured PNG snapshot from disk. The path
// matches what the capture pipeline in cmd/paircal writes:
//   - default: cfg.PreviewPath
//   - debug:   ./cache/preview.png
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := s.cfg.PreviewPath
	if s.debug {
		previewPath = "./cache/preview.png"
	}
	http.ServeFile(w, r, previewPath)
}

// staticFileServer returns an http.Handler that serves the embedded UI from
// internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Never serve HTML for unknown API paths; a 404 is the right answer.
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			http.NotFound(w, r)
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
