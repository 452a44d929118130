package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/middleware"
	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/model/document"
	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/internal/preference"
	localestate "github.com/zhouzirui/vetchat/internal/service/locale"
	"github.com/zhouzirui/vetchat/internal/service/orchestrator"
	"github.com/zhouzirui/vetchat/internal/service/playback"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second

	rateLimitedMessage = "Too many requests. Please slow down."
)

// FeedbackSubmitter 保存用户反馈。
type FeedbackSubmitter interface {
	Submit(ctx context.Context, text string) (chat.FeedbackResult, error)
}

// Handler 聊天挂件的 WebSocket 处理器，每个连接对应一个独立的会话引擎
type Handler struct {
	answers  orchestrator.Transport
	feedback FeedbackSubmitter
	catalog  *locale.Catalog
	cfg      orchestrator.Config
	upgrader websocket.Upgrader

	askLimiter      *httprate.RateLimiter
	feedbackLimiter *httprate.RateLimiter
}

// New 创建 WebSocket 处理器。ask 与 feedback 消息按客户端 IP 限流，配额与 HTTP 接口一致
func New(answers orchestrator.Transport, feedback FeedbackSubmitter, catalog *locale.Catalog, cfg orchestrator.Config, limits config.LimitConfig, allowedOrigins []string) *Handler {
	return &Handler{
		answers:         answers,
		feedback:        feedback,
		catalog:         catalog,
		cfg:             cfg,
		askLimiter:      newLimiter(limits.AskPerMinute, time.Minute),
		feedbackLimiter: newLimiter(limits.FeedbackPerMinute, time.Minute),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.AllowedOrigin(allowedOrigins, r.Header.Get("Origin"))
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type askMessage struct {
	Query string `json:"query"`
}

type languageMessage struct {
	Language string `json:"language"`
}

type feedbackMessage struct {
	Feedback string `json:"feedback"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// PlaybackEnd 一次提问的回复播放结束后发送
type PlaybackEnd struct {
	Status    orchestrator.Status `json:"status"`
	MessageID string              `json:"messageId,omitempty"`
	Completed bool                `json:"completed"`
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if !h.catalog.Has(lang) {
		lang = h.catalog.Fallback()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "widget").Msg("upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := h.newSession(conn, lang)
	s.request = r
	s.clientKey, _ = httprate.KeyByIP(r)
	log.Info().Str("component", "widget").Str("session", s.info.ID).Str("language", lang).Msg("new connection")
	defer func() {
		s.engine.Cancel()
		s.wg.Wait()
		log.Info().Str("component", "widget").Str("session", s.info.ID).Int("messages", s.engine.Log().Len()).Msg("connection closed")
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go s.pingLoop(ctx)

	s.sendTranslations()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "widget").Msg("read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		h.handleMessage(ctx, s, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, s *session, msg *inboundMessage) {
	switch msg.Type {
	case "ask":
		var payload askMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.sendError("invalid ask payload")
			return
		}
		if h.limited(h.askLimiter, s) {
			return
		}
		s.ask(ctx, payload.Query)
	case "language":
		var payload languageMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.sendError("invalid language payload")
			return
		}
		if err := s.engine.Locale().SetLanguage(payload.Language); err != nil {
			s.sendError(errors.Cause(err).Error())
			return
		}
		s.info.Language = payload.Language
		s.sendTranslations()
	case "feedback":
		var payload feedbackMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.sendError("invalid feedback payload")
			return
		}
		if h.feedback == nil {
			s.sendError("feedback unavailable")
			return
		}
		if h.limited(h.feedbackLimiter, s) {
			return
		}
		result, _ := h.feedback.Submit(ctx, payload.Feedback)
		s.send("feedback", result)
	case "cancel":
		s.engine.Cancel()
	default:
		s.sendError("unsupported message type: " + msg.Type)
	}
}

// newLimiter 返回只计数、不写响应头的限流器；limit 非正数时不限流
func newLimiter(limit int, window time.Duration) *httprate.RateLimiter {
	if limit <= 0 {
		return nil
	}
	return httprate.NewRateLimiter(limit, window,
		httprate.WithResponseHeaders(httprate.ResponseHeaders{}),
		httprate.WithErrorHandler(func(_ http.ResponseWriter, _ *http.Request, err error) {
			log.Warn().Err(err).Str("component", "widget").Msg("rate limit counter failed")
		}),
	)
}

// limited 计入一次消息；超限时通知客户端并返回 true
func (h *Handler) limited(limiter *httprate.RateLimiter, s *session) bool {
	if limiter == nil || s.request == nil {
		return false
	}
	// 握手已被劫持，限流器不写响应头，因此不需要 ResponseWriter
	if !limiter.OnLimit(nil, s.request, s.clientKey) {
		return false
	}
	s.send("rate_limited", map[string]string{"message": rateLimitedMessage})
	return true
}

// session 连接级的会话引擎和串行化的写端，同时充当引擎的播放 sink 与加载指示器
type session struct {
	info      chat.Session
	conn      *websocket.Conn
	catalog   *locale.Catalog
	engine    *orchestrator.Orchestrator
	wg        sync.WaitGroup
	request   *http.Request
	clientKey string

	writeMu sync.Mutex

	// flushMu 保证日志快照与 sent 游标一起推进，消息按日志顺序发出
	flushMu sync.Mutex
	sent    int
}

func (h *Handler) newSession(conn *websocket.Conn, lang string) *session {
	s := &session{
		info:    chat.Session{ID: uuid.NewString(), Language: lang, CreatedAt: time.Now().UTC()},
		conn:    conn,
		catalog: h.catalog,
	}
	state := localestate.New(preference.NewMemoryStore(map[string]string{preference.KeyLanguage: lang}), h.catalog)
	s.engine = orchestrator.New(h.cfg, orchestrator.Deps{
		Transport: h.answers,
		Sink:      s,
		Locale:    state,
		Indicator: s,
	})
	return s
}

// ask 在读循环之外提交问题，等待回答期间连接仍可处理 cancel 与 language 消息
func (s *session) ask(ctx context.Context, query string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		outcome := s.engine.Submit(ctx, query)
		if outcome.Status == orchestrator.StatusBusy {
			s.send("busy", map[string]string{"message": s.catalog.Advisory(s.engine.Locale().Current(), locale.AdvisoryBusy)})
			return
		}

		completed := false
		if outcome.Playback != nil {
			_ = outcome.Playback.Wait(ctx)
			completed = outcome.Playback.Completed()
		}
		s.flushMessages()
		s.send("playback_end", PlaybackEnd{Status: outcome.Status, MessageID: outcome.MessageID, Completed: completed})
	}()
}

func (s *session) Append(u playback.Unit) error {
	s.flushMessages()
	return s.write("unit", u)
}

func (s *session) AppendDocument(messageID string, doc document.Document) error {
	s.flushMessages()
	return s.write("document", map[string]any{"messageId": messageID, "blocks": doc.Blocks})
}

func (s *session) Show() {
	s.flushMessages()
	s.send("loading", map[string]bool{"loading": true})
}

func (s *session) Hide() { s.send("loading", map[string]bool{"loading": false}) }

// flushMessages 发送客户端尚未收到的日志消息，保证消息先于它的第一个播放单元到达
func (s *session) flushMessages() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	for _, m := range s.takeUnsent() {
		s.send("message", m)
	}
}

// takeUnsent 返回未发送的日志消息并推进游标，调用方需持有 flushMu
func (s *session) takeUnsent() []chat.Message {
	messages := s.engine.Log().Messages()
	if s.sent >= len(messages) {
		return nil
	}
	pending := messages[s.sent:]
	s.sent = len(messages)
	return pending
}

func (s *session) sendTranslations() {
	code := s.engine.Locale().Current()
	s.send("translations", map[string]any{
		"language": code,
		"ui":       s.catalog.UI(code),
	})
}

func (s *session) sendError(message string) {
	s.send("error", map[string]string{"message": message})
}

func (s *session) send(kind string, data interface{}) {
	if err := s.write(kind, data); err != nil {
		log.Debug().Err(err).Str("component", "widget").Str("type", kind).Msg("write failed")
	}
}

func (s *session) write(kind string, data interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(outgoingMessage{
		Type:      kind,
		SessionID: s.info.ID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// pingLoop 定期发送ping消息
func (s *session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
