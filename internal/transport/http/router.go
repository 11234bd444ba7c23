package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nitinder-api/internal/application/auth"
	"github.com/nitinder-api/internal/application/conversation"
	"github.com/nitinder-api/internal/application/game"
	"github.com/nitinder-api/internal/application/match"
	"github.com/nitinder-api/internal/application/profile"
	"github.com/nitinder-api/internal/application/session"
	"github.com/nitinder-api/internal/application/swipe"
	"github.com/nitinder-api/internal/application/user"
	"github.com/nitinder-api/internal/config"
	"github.com/nitinder-api/internal/transport/http/handler"
	appmiddleware "github.com/nitinder-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 10 << 20

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(chimiddleware.RequestSize(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 on the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	profileSvc := profile.NewService(profile.ServiceDeps{
		ProfileRepo: deps.ProfileRepo,
		SwipeRepo:   deps.SwipeRepo,
		Images:      deps.Images,
	})
	matchSvc := match.NewService(match.ServiceDeps{
		MatchRepo:   deps.MatchRepo,
		UserRepo:    deps.UserRepo,
		ProfileRepo: deps.ProfileRepo,
		Events:      deps.Events,
	})
	swipeSvc := swipe.NewService(swipe.ServiceDeps{
		SwipeRepo:   deps.SwipeRepo,
		UserRepo:    deps.UserRepo,
		ProfileRepo: deps.ProfileRepo,
		Matches:     matchSvc,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		SessionRepo: deps.SessionRepo,
		Profiles:    profileSvc,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		OTPRepo:      deps.OTPRepo,
		UserRepo:     deps.UserRepo,
		SessionRepo:  deps.SessionRepo,
		Profiles:     profileSvc,
		Mailer:       deps.Mailer,
		Throttle:     deps.Throttle,
		JWTProvider:  deps.JWTProvider,
		EmailPattern: deps.EmailPattern,
		OTPTTL:       cfg.OTPTTL,
		MaxAttempts:  cfg.OTPMaxAttempts,
	})
	conversationSvc := conversation.NewService(conversation.ServiceDeps{
		ConversationRepo: deps.ConversationRepo,
		MessageRepo:      deps.MessageRepo,
		Matches:          matchSvc,
		ProfileRepo:      deps.ProfileRepo,
		Events:           deps.Events,
	})
	gameSvc := game.NewService(game.ServiceDeps{
		SessionRepo:  deps.GameSessionRepo,
		ResponseRepo: deps.GameResponseRepo,
		Matches:      matchSvc,
		ProfileRepo:  deps.ProfileRepo,
		Events:       deps.Events,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, sessionSvc, userSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	swipeH := handler.NewSwipeHandler(swipeSvc)
	matchH := handler.NewMatchHandler(matchSvc)
	conversationH := handler.NewConversationHandler(conversationSvc)
	gameH := handler.NewGameHandler(gameSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/", healthH.Root)
	r.Get("/health-check/{action}", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/auth/send-otp", authH.SendOTP)
	r.With(sensitiveRL.Limit).Post("/auth/verify-otp", authH.VerifyOTP)
	r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider, sessionSvc))

		r.Post("/auth/logout", authH.Logout)
		r.Get("/auth/session", authH.Session)
		r.Delete("/auth/account", authH.DeleteAccount)

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", profileH.List)
			r.Post("/", profileH.Create)
			r.Get("/me", profileH.Me)
			r.Get("/feed", profileH.Feed)
			r.Get("/{id}", profileH.Get)
			r.Get("/{id}/image", profileH.Image)
			r.Put("/{id}", profileH.Update)
			r.Delete("/{id}", profileH.Delete)
		})

		r.Route("/swipes", func(r chi.Router) {
			r.Get("/", swipeH.List)
			r.Post("/", swipeH.Create)
			r.Get("/{id}", swipeH.Get)
			r.Delete("/{id}", swipeH.Delete)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchH.List)
			r.Post("/", matchH.Create)
			r.Get("/{id}", matchH.Get)
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationH.List)
			r.Post("/", conversationH.Open)
			r.Get("/{id}", conversationH.Get)
			r.Get("/{id}/messages", conversationH.Messages)
			r.Post("/{id}/messages", conversationH.Send)
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/", gameH.Create)
			r.Get("/session/{id}", gameH.GetSession)
			r.Post("/session/{id}/response", gameH.SubmitResponse)
			r.Put("/session/{id}/complete", gameH.Complete)
			r.Get("/{matchId}", gameH.ListForMatch)
		})
	})

	return r
}
