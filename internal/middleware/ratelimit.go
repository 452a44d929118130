package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/zhouzirui/vetchat/pkg/utils"
)

// RateLimit 按客户端 IP 限流，超限时返回 429 和 JSON 错误体。
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
		}),
	)
}
