package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"quadrahub/internal/pkg/cache"
)

// RateLimiter limita requisições por IP usando um contador com TTL no Redis.
// O INCR é atômico: requisições concorrentes do mesmo IP recebem contagens
// distintas, sem janela entre leitura e escrita. O TTL é definido na primeira
// contagem da janela.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.Incr(ctx, key)
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if count == 1 {
				client.Expire(ctx, key, duration)
			}

			if count > int64(limit) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			next.ServeHTTP(w, r)
		})
	}
}
