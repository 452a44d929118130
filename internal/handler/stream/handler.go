package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/model/document"
	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/preference"
	localestate "github.com/zhouzirui/vetchat/internal/service/locale"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/internal/service/playback"
	"github.com/zhouzirui/vetchat/pkg/utils"
)

// Handler 通过 SSE 逐字回放一次问答的结果
type Handler struct {
	answers   orchestrator.Transport
	catalog   *locale.Catalog
	cfg       orchestrator.Config
	scheduler *playback.Scheduler
}

// New 创建流式回放处理器，请求未指定 mode 时使用 cfg.Mode
func New(answers orchestrator.Transport, catalog *locale.Catalog, cfg orchestrator.Config) *Handler {
	return &Handler{
		answers:   answers,
		catalog:   catalog,
		cfg:       cfg,
		scheduler: playback.NewScheduler(),
	}
}

// RegisterRoutes 注册流式回放路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

// EndEvent 流结束时发送的事件
type EndEvent struct {
	Status    orchestrator.Status `json:"status"`
	MessageID string              `json:"messageId,omitempty"`
	Completed bool                `json:"completed"`
}

// handleStream 处理 GET /stream?query=&mode=&lang=
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	cfg := h.cfg
	if raw := r.URL.Query().Get("mode"); raw != "" {
		mode, err := playback.ParseMode(raw, cfg.Mode.Interval)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Mode = mode
	}

	lang := r.URL.Query().Get("lang")
	if !h.catalog.Has(lang) {
		lang = h.catalog.Fallback()
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sink := &sseSink{w: w, flusher: flusher}
	engine := orchestrator.New(cfg, orchestrator.Deps{
		Transport: h.answers,
		Sink:      sink,
		Locale:    localestate.New(preference.NewMemoryStore(map[string]string{preference.KeyLanguage: lang}), h.catalog),
		Indicator: sink,
		Scheduler: h.scheduler,
	})

	ctx := r.Context()
	start := time.Now()
	outcome := engine.Submit(ctx, r.URL.Query().Get("query"))

	completed := false
	if outcome.Playback != nil {
		if err := outcome.Playback.Wait(ctx); err != nil {
			outcome.Playback.Cancel()
			log.Debug().Err(err).Str("component", "stream").Msg("playback ended early")
		}
		completed = outcome.Playback.Completed()
	}

	sink.send("end", EndEvent{Status: outcome.Status, MessageID: outcome.MessageID, Completed: completed})
	log.Info().Str("component", "stream").Str("status", string(outcome.Status)).Dur("duration", time.Since(start)).Msg("stream finished")
}

// sseSink 把播放单元与加载信号串行写到同一个响应上
type sseSink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseSink) Append(u playback.Unit) error {
	if err := s.startOnce(u.MessageID); err != nil {
		return err
	}
	return s.send("unit", u)
}

func (s *sseSink) AppendDocument(messageID string, doc document.Document) error {
	if err := s.startOnce(messageID); err != nil {
		return err
	}
	return s.send("document", map[string]any{"messageId": messageID, "blocks": doc.Blocks})
}

func (s *sseSink) Show() { _ = s.send("loading", map[string]bool{"loading": true}) }
func (s *sseSink) Hide() { _ = s.send("loading", map[string]bool{"loading": false}) }

func (s *sseSink) startOnce(messageID string) error {
	s.mu.Lock()
	started := s.started
	s.started = true
	s.mu.Unlock()
	if started {
		return nil
	}
	return s.send("start", map[string]string{"messageId": messageID})
}

func (s *sseSink) send(event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.SendSSEEvent(s.w, s.flusher, event, data)
}
