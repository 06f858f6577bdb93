package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carai-site-backend/internal/assistant"
	"carai-site-backend/internal/config"
	"carai-site-backend/internal/db"
	"carai-site-backend/internal/intake"
	"carai-site-backend/internal/store"
	"carai-site-backend/internal/telemetry"
	"carai-site-backend/internal/types"
)

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	log      *zap.SugaredLogger
	registry *store.Registry
	leads    store.LeadStore
	llm      assistant.Streamer
	stt      assistant.Transcriber
	persona  *assistant.Persona
	tracker  intake.Tracker
	database *db.DB
}

func NewServer(cfg config.Config, log *zap.SugaredLogger) (*Server, error) {
	persona, err := assistant.LoadPersona(cfg.AssistantSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant persona: %w", err)
	}

	client := assistant.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.STTModel)

	var database *db.DB
	var leads store.LeadStore
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations("./migrations"); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Infow("database connection established")
		leads = store.NewDatabaseStore(database)
	} else {
		log.Warnw("DB_URL not provided, spooling leads to file", "path", cfg.LeadsSpoolFile)
		leads = store.NewFileLeadStore(cfg.LeadsSpoolFile)
	}

	s := newServer(cfg, log, client, client, persona, leads,
		telemetry.New(cfg.GA4MeasurementID, cfg.GA4APISecret, log))
	s.database = database
	return s, nil
}

// newServer wires the handler graph from explicit dependencies.
func newServer(
	cfg config.Config,
	log *zap.SugaredLogger,
	llm assistant.Streamer,
	stt assistant.Transcriber,
	persona *assistant.Persona,
	leads store.LeadStore,
	tracker intake.Tracker,
) *Server {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:   r,
		cfg:      cfg,
		log:      log,
		registry: store.NewRegistry(),
		leads:    leads,
		llm:      llm,
		stt:      stt,
		persona:  persona,
		tracker:  tracker,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	// chat widget
	s.router.Post("/api/chat/stream", s.handleChatStream)
	s.router.Get("/api/chat/history", s.handleChatHistory)
	s.router.Post("/api/chat/dictate", s.handleDictate)
	s.router.Post("/api/projects/describe", s.handleDescribe)
	// intake form
	s.router.Get("/api/contact/form", s.handleContactForm)
	s.router.Post("/api/contact/service", s.handleContactService)
	s.router.Post("/api/contact/field", s.handleContactField)
	s.router.Post("/api/contact/submit", s.handleContactSubmit)
	s.router.Post("/api/contact", s.handleContactDirect)
	s.router.Get("/api/leads/recent", s.handleRecentLeads)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// session returns the visitor's chat session, creating it on first use.
// Creation is idempotent per session ID; repeat calls return the same handle.
func (s *Server) session(sid string) *assistant.Session {
	return s.registry.Session(sid, func() *assistant.Session {
		return assistant.NewSession(s.llm, s.persona, s.log)
	})
}

// form returns the visitor's intake form, creating it on first use.
func (s *Server) form(sid string) *intake.Form {
	return s.registry.Form(sid, func() *intake.Form {
		return intake.NewForm(intake.DefaultService, intake.Options{
			Sender:         &leadSender{leads: s.leads},
			Tracker:        s.tracker,
			SuccessHold:    s.cfg.SuccessHold,
			ClearOnSuccess: s.cfg.ClearOnSuccess,
			Logger:         s.log,
		})
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return "s_" + uuid.NewString()
}

// getSessionID retrieves the session ID from cookie, header, or query param.
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID gets the existing session ID or creates a new one,
// setting the cookie.
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = newSessionID()
		SetSessionCookie(w, sid)
	}
	return sid
}
