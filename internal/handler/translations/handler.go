package translations

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/vetchat/internal/model/locale"
	"github.com/zhouzirui/vetchat/pkg/utils"
)

// Handler 界面文案接口的HTTP处理器
type Handler struct {
	catalog *locale.Catalog
}

// New 创建文案处理器
func New(catalog *locale.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes 注册文案相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/translations", h.handleTranslations)
	r.Get("/languages", h.handleLanguages)
}

// handleTranslations 返回指定语言的界面文案，未知语言返回空对象
func (h *Handler) handleTranslations(w http.ResponseWriter, r *http.Request) {
	table := h.catalog.UI(r.URL.Query().Get("language"))
	if table == nil {
		table = map[string]string{}
	}
	utils.RespondJSON(w, http.StatusOK, table)
}

// handleLanguages 列出支持的语言
func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"languages": h.catalog.Codes(),
		"fallback":  h.catalog.Fallback(),
	})
}
