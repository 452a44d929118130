package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/middleware"
	"github.com/zhouzirui/vetchat/internal/model/chat"
	"github.com/zhouzirui/vetchat/internal/service/answer"
	"github.com/zhouzirui/vetchat/internal/service/feedback"
	"github.com/zhouzirui/vetchat/pkg/utils"
)

const answerFailedText = "Oops! Something went wrong. Please try again later."

// Answerer 生成问题的回答文本。
type Answerer interface {
	AskQuestion(ctx context.Context, query string) (chat.Answer, error)
}

// FeedbackSubmitter 保存用户反馈。
type FeedbackSubmitter interface {
	Submit(ctx context.Context, text string) (chat.FeedbackResult, error)
}

// Handler 问答与反馈接口的HTTP处理器
type Handler struct {
	answers        Answerer
	feedback       FeedbackSubmitter
	maxQueryLength int
	limits         config.LimitConfig
}

// New 创建问答处理器
func New(answers Answerer, feedback FeedbackSubmitter, maxQueryLength int, limits config.LimitConfig) *Handler {
	return &Handler{
		answers:        answers,
		feedback:       feedback,
		maxQueryLength: maxQueryLength,
		limits:         limits,
	}
}

// RegisterRoutes 注册问答相关的路由，每个接口单独限流
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RateLimit(h.limits.AskPerMinute, time.Minute)).Post("/ask", h.handleAsk)
	r.With(middleware.RateLimit(h.limits.FeedbackPerMinute, time.Minute)).Post("/feedback", h.handleFeedback)
}

// handleAsk 回答一个问题
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	invalid := chat.Answer{Response: fmt.Sprintf("Please enter a valid query (max %d characters).", h.maxQueryLength)}

	var payload chat.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, invalid)
		return
	}

	result, err := h.answers.AskQuestion(r.Context(), payload.Query)
	if errors.Is(err, answer.ErrInvalidQuery) {
		utils.RespondJSON(w, http.StatusBadRequest, invalid)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("component", "ask").Msg("error processing query")
		utils.RespondJSON(w, http.StatusInternalServerError, chat.Answer{Response: answerFailedText})
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

// handleFeedback 保存一条反馈
func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload chat.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, chat.FeedbackResult{Message: feedback.MessageEmpty})
		return
	}

	result, err := h.feedback.Submit(r.Context(), payload.Feedback)
	switch {
	case errors.Is(err, feedback.ErrEmptyFeedback), errors.Is(err, feedback.ErrFeedbackTooLong):
		utils.RespondJSON(w, http.StatusBadRequest, result)
	case err != nil:
		utils.RespondJSON(w, http.StatusInternalServerError, result)
	default:
		utils.RespondJSON(w, http.StatusOK, result)
	}
}
