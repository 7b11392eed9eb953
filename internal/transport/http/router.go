package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/onetodo/auth-api/internal/application/auth"
	"github.com/onetodo/auth-api/internal/application/notifier"
	"github.com/onetodo/auth-api/internal/application/session"
	tokenapp "github.com/onetodo/auth-api/internal/application/token"
	"github.com/onetodo/auth-api/internal/application/user"
	"github.com/onetodo/auth-api/internal/config"
	"github.com/onetodo/auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/onetodo/auth-api/internal/infrastructure/jwt"
	"github.com/onetodo/auth-api/internal/infrastructure/smtp"
	"github.com/onetodo/auth-api/internal/transport/http/handler"
	appmiddleware "github.com/onetodo/auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo            *dynamo.UserRepo
	SessionRepo         *dynamo.SessionRepo
	VerificationTokens  *dynamo.TokenRepo
	PasswordResetTokens *dynamo.TokenRepo
	TwoFactorTokens     *dynamo.TokenRepo
	ConfirmationRepo    *dynamo.ConfirmationRepo
	Mailer              smtp.Mailer
	JWTProvider         *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	issuer := tokenapp.NewIssuer(tokenapp.IssuerDeps{
		VerificationTokens:  deps.VerificationTokens,
		PasswordResetTokens: deps.PasswordResetTokens,
		TwoFactorTokens:     deps.TwoFactorTokens,
	})
	notify := notifier.NewService(deps.Mailer, cfg.AppBaseURL)
	sessionIssuer := session.NewIssuer(deps.SessionRepo, deps.JWTProvider, cfg.RefreshTokenDur)
	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:         deps.UserRepo,
		TwoFactorTokens:  deps.TwoFactorTokens,
		ConfirmationRepo: deps.ConfirmationRepo,
		TokenIssuer:      issuer,
		Notifier:         notify,
		SessionIssuer:    sessionIssuer,
		SessionRepo:      deps.SessionRepo,
		JWTProvider:      deps.JWTProvider,
		RefreshTokenDur:  cfg.RefreshTokenDur,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:    deps.UserRepo,
		TokenIssuer: issuer,
		Notifier:    notify,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		VerificationTokens:  deps.VerificationTokens,
		PasswordResetTokens: deps.PasswordResetTokens,
		UserRepo:            deps.UserRepo,
		TokenIssuer:         issuer,
		Notifier:            notify,
	})

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	resetH := handler.NewPasswordResetHandler(authSvc)
	emailH := handler.NewEmailVerifyHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/verify-otp", sessionH.VerifyOTP)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/password-reset/{action}", resetH.Action)
		r.With(sensitiveRL.Limit).Post("/verify-email", emailH.Verify)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
		})
	})

	return r
}
