package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/YadavAkhileshh/CrackBano/internal/auth"
	"github.com/YadavAkhileshh/CrackBano/internal/handler"
	"github.com/YadavAkhileshh/CrackBano/internal/metrics"
	"github.com/YadavAkhileshh/CrackBano/internal/middleware"
	"github.com/YadavAkhileshh/CrackBano/internal/service"
)

// uploadsPrefix is where stored profile images are served.
const uploadsPrefix = "/uploads"

// routes builds the router.
//
//	GET    /health                        liveness + database and cache ping
//	GET    /metrics                       Prometheus
//	GET    /api/info, /api/test
//	GET    /uploads/{file}                stored profile images
//	POST   /api/auth/register, /api/auth/login
//	POST   /api/auth/upload-image         multipart "image"
//	GET    /api/auth/profile              auth
//	POST   /api/ai/generate-questions     auth, rate limited
//	POST   /api/ai/explain-concept        auth, rate limited
//	POST   /api/sessions/create           auth
//	GET    /api/sessions/my-sessions      auth
//	GET    /api/sessions/{id}             auth
//	DELETE /api/sessions/{id}             auth
//	POST   /api/questions/add             auth
//	GET    /api/questions/pinned          auth
//	PATCH  /api/questions/{id}/pin        auth
//	PATCH  /api/questions/{id}/notes      auth
//
// Recoverer runs inside Logger so a recovered panic is still logged as a 500.
func (s *Server) routes() *chi.Mux {
	authService := service.NewAuthService(s.db, s.tokens, auth.NewPasswordService(), s.logger)
	sessionService := service.NewSessionService(s.db, s.sessions, s.metrics, s.logger)
	questionService := service.NewQuestionService(s.db, s.db, s.sessions, s.logger)

	errs := handler.NewErrors(s.logger, !s.cfg.IsProduction())
	healthHandler := handler.NewHealthHandler(s.db, s.cfg.Environment, s.gateway.Providers(), s.logger)
	if s.redis != nil {
		healthHandler.WithCache(s.redis)
	}
	authHandler := handler.NewAuthHandler(authService, errs, s.logger)
	aiHandler := handler.NewAIHandler(s.gateway, errs)
	sessionHandler := handler.NewSessionHandler(sessionService, errs)
	questionHandler := handler.NewQuestionHandler(questionService, errs)

	requireAuth := auth.RequireAuth(s.tokens)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, s.metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(s.cfg.CORSAllowedOrigins))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", healthHandler.HandleHealth)
	r.Handle("/metrics", metrics.Handler(s.registry))
	if s.images != nil {
		r.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix, s.images.FileServer()))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/info", healthHandler.HandleInfo)
		r.Get("/test", healthHandler.HandleTest)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			if s.images != nil {
				uploadHandler := handler.NewUploadHandler(s.images, uploadsPrefix, errs, s.logger)
				r.Post("/upload-image", uploadHandler.HandleUploadImage)
			}
			r.With(requireAuth).Get("/profile", authHandler.HandleProfile)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(s.limiter.Middleware)
			r.Post("/generate-questions", aiHandler.HandleGenerateQuestions)
			r.Post("/explain-concept", aiHandler.HandleExplainConcept)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/create", sessionHandler.HandleCreate)
			r.Get("/my-sessions", sessionHandler.HandleList)
			r.Get("/{id}", sessionHandler.HandleGet)
			r.Delete("/{id}", sessionHandler.HandleDelete)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/add", questionHandler.HandleAdd)
			r.Get("/pinned", questionHandler.HandleListPinned)
			r.Patch("/{id}/pin", questionHandler.HandleTogglePin)
			r.Patch("/{id}/notes", questionHandler.HandleUpdateNote)
		})
	})

	return r
}
