package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "quadrahub/docs" // registro da especificação OpenAPI gerada

	"quadrahub/internal/api/court"
	"quadrahub/internal/api/event"
	"quadrahub/internal/api/user"
	"quadrahub/internal/pkg/cache"
	"quadrahub/internal/pkg/middleware"
)

// Options agrupa as dependências do roteador além dos handlers.
type Options struct {
	TokenSvc       middleware.TokenService
	CacheClient    cache.Client
	UploadDir      string
	RateLimitMax   int
	RateLimitEvery time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(userHandler *user.Handler, courtHandler *court.Handler, eventHandler *event.Handler, opts Options) http.Handler {

	// ServeMux padrão do net/http; os patterns com método e {id} cobrem o
	// roteamento sem mux de terceiros.
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(opts.TokenSvc)

	// --- 1. Health check e documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// --- 2. Mídia enviada (fotos de quadras e eventos) ---
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))

	// --- 3. Usuários ---
	mux.HandleFunc("POST /v1/users/register", userHandler.RegisterHandler)
	mux.HandleFunc("POST /v1/users/login", userHandler.LoginHandler)
	mux.HandleFunc("PUT /v1/users/profile", auth(userHandler.UpdateProfileHandler))
	mux.HandleFunc("GET /v1/users/me", auth(userHandler.MeHandler))
	mux.HandleFunc("GET /v1/users", auth(userHandler.ListUsersHandler))

	// --- 4. Quadras ---
	mux.HandleFunc("POST /v1/courts", auth(courtHandler.CreateHandler))
	mux.HandleFunc("GET /v1/courts", auth(courtHandler.ListHandler))
	mux.HandleFunc("POST /v1/courts/{id}/rate", auth(courtHandler.RateHandler))

	// --- 5. Eventos e inscrições ---
	// A rota fixa "subscriptions" precisa vir registrada junto das rotas com
	// {id}; o ServeMux resolve pela especificidade do pattern.
	mux.HandleFunc("POST /v1/events", auth(eventHandler.CreateHandler))
	mux.HandleFunc("GET /v1/events", auth(eventHandler.ListHandler))
	mux.HandleFunc("GET /v1/events/subscriptions", auth(eventHandler.ListSubscriptionsHandler))
	mux.HandleFunc("POST /v1/events/{id}/rate", auth(eventHandler.RateHandler))
	mux.HandleFunc("POST /v1/events/{id}/subscribe", auth(eventHandler.SubscribeHandler))
	mux.HandleFunc("DELETE /v1/events/{id}/subscribe", auth(eventHandler.UnsubscribeHandler))

	// --- 6. Middlewares globais ---
	limiter := middleware.RateLimiter(opts.CacheClient, opts.RateLimitMax, opts.RateLimitEvery)
	return limiter(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
