package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/pkg/errors"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Chat      ChatConfig
	Limits    LimitConfig
	Knowledge KnowledgeConfig
	Feedback  FeedbackConfig
	AI        AIConfig
	Log       LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	limits, err := loadLimitConfig()
	if err != nil {
		return nil, err
	}

	knowledge, err := loadKnowledgeConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Chat:      chat,
		Limits:    limits,
		Knowledge: knowledge,
		Feedback:  loadFeedbackConfig(),
		AI:        ai,
		Log:       loadLogConfig(),
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "10000"
	}

	origins := splitList(getEnvOrDefault("ALLOWED_ORIGINS", "*"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":10000" 或 "127.0.0.1:10000"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, errors.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// ChatConfig 描述聊天引擎的行为参数。
type ChatConfig struct {
	MaxQueryLength    int
	MaxFeedbackLength int
	TypingInterval    time.Duration
	PlaybackMode      string
	FallbackLanguage  string
	GreetingsEnabled  bool
}

func loadChatConfig() (ChatConfig, error) {
	maxQuery, err := parsePositiveIntEnv("MAX_QUERY_LENGTH", 500)
	if err != nil {
		return ChatConfig{}, err
	}

	maxFeedback, err := parsePositiveIntEnv("MAX_FEEDBACK_LENGTH", 1000)
	if err != nil {
		return ChatConfig{}, err
	}

	intervalMS, err := parsePositiveIntEnv("TYPING_INTERVAL_MS", 30)
	if err != nil {
		return ChatConfig{}, err
	}

	greetings, err := parseBoolEnv("GREETINGS_ENABLED", true)
	if err != nil {
		return ChatConfig{}, err
	}

	mode := strings.ToLower(getEnvOrDefault("PLAYBACK_MODE", "paced"))
	if mode != "paced" && mode != "instant" {
		return ChatConfig{}, errors.Errorf("invalid PLAYBACK_MODE value %q", mode)
	}

	return ChatConfig{
		MaxQueryLength:    maxQuery,
		MaxFeedbackLength: maxFeedback,
		TypingInterval:    time.Duration(intervalMS) * time.Millisecond,
		PlaybackMode:      mode,
		FallbackLanguage:  getEnvOrDefault("FALLBACK_LANGUAGE", "en"),
		GreetingsEnabled:  greetings,
	}, nil
}

// LimitConfig 对应各接口的限流配额。
type LimitConfig struct {
	AskPerMinute      int
	FeedbackPerMinute int
	GlobalPerHour     int
}

func loadLimitConfig() (LimitConfig, error) {
	ask, err := parsePositiveIntEnv("ASK_RATE_PER_MINUTE", 5)
	if err != nil {
		return LimitConfig{}, err
	}
	feedback, err := parsePositiveIntEnv("FEEDBACK_RATE_PER_MINUTE", 2)
	if err != nil {
		return LimitConfig{}, err
	}
	global, err := parsePositiveIntEnv("GLOBAL_RATE_PER_HOUR", 50)
	if err != nil {
		return LimitConfig{}, err
	}
	return LimitConfig{AskPerMinute: ask, FeedbackPerMinute: feedback, GlobalPerHour: global}, nil
}

// KnowledgeConfig 描述知识库来源。Path 为空时使用内置条目。
type KnowledgeConfig struct {
	Path string
	TopK int
}

func loadKnowledgeConfig() (KnowledgeConfig, error) {
	topK, err := parsePositiveIntEnv("KNOWLEDGE_TOP_K", 3)
	if err != nil {
		return KnowledgeConfig{}, err
	}
	return KnowledgeConfig{Path: strings.TrimSpace(os.Getenv("KNOWLEDGE_PATH")), TopK: topK}, nil
}

// FeedbackConfig 描述反馈的落盘位置。DSN 非空时写入 SQLite。
type FeedbackConfig struct {
	Path string
	DSN  string
}

func loadFeedbackConfig() FeedbackConfig {
	tmp := getEnvOrDefault("TEMP", "/tmp")
	return FeedbackConfig{
		Path: getEnvOrDefault("FEEDBACK_PATH", strings.TrimRight(tmp, "/")+"/feedback.txt"),
		DSN:  strings.TrimSpace(os.Getenv("FEEDBACK_DSN")),
	}
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePositiveIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	if *val <= 0 {
		return 0, errors.Errorf("invalid %s value %d: must be positive", key, *val)
	}
	return *val, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s value %q", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", key, value)
	}
	return &val, nil
}
