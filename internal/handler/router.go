package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/handler/chat"
	"github.com/zhouzirui/vetchat/internal/handler/stream"
	"github.com/zhouzirui/vetchat/internal/handler/translations"
	"github.com/zhouzirui/vetchat/internal/handler/widget"
	middlewarePkg "github.com/zhouzirui/vetchat/internal/middleware"
	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/pkg/utils"
)

// Services 是路由依赖的核心服务。
type Services struct {
	Answers  chat.Answerer
	Feedback chat.FeedbackSubmitter
	Catalog  *locale.Catalog
	Engine   orchestrator.Config
}

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.Server.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.RateLimit(cfg.Limits.GlobalPerHour, time.Hour))

		chat.New(svc.Answers, svc.Feedback, cfg.Chat.MaxQueryLength, cfg.Limits).RegisterRoutes(api)
		translations.New(svc.Catalog).RegisterRoutes(api)

		// SSE 回放与 /ask 共享同样的每分钟配额
		paced := api.With(middlewarePkg.RateLimit(cfg.Limits.AskPerMinute, time.Minute))
		stream.New(svc.Answers, svc.Catalog, svc.Engine).RegisterRoutes(paced)

		widget.New(svc.Answers, svc.Feedback, svc.Catalog, svc.Engine, cfg.Limits, cfg.Server.AllowedOrigins).RegisterRoutes(api)
	})

	return r
}
