package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/vetchat/internal/config"
	"github.com/zhouzirui/vetchat/internal/model/knowledge"
)

// Service 使用 eino 链把检索到的知识条目改写成面向养殖户的回答。
type Service struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	cfg   config.AIConfig
}

// NewService 创建基于 Ark 模型的回答生成服务。
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chat model")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile answer chain")
	}

	return &Service{chain: runnable, cfg: cfg}, nil
}

// Generate answers query using only the supplied entries as reference.
func (s *Service) Generate(ctx context.Context, query string, entries []knowledge.Entry) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": BuildSystemPrompt(entries),
		"query":  query,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to run answer chain")
	}

	log.Info().Str("component", "ai").Int("entries", len(entries)).Int("length", len(response.Content)).Msg("generated answer")
	return response.Content, nil
}

// BuildSystemPrompt 描述输出格式并附上参考资料。
// 输出格式必须与前端格式化器识别的语法一致。
func BuildSystemPrompt(entries []knowledge.Entry) string {
	var b strings.Builder
	b.WriteString("You are a veterinary assistant for livestock farmers. Answer only from the reference material below. ")
	b.WriteString("If the material does not cover the question, reply with an empty message.\n\n")
	b.WriteString("Format rules:\n")
	b.WriteString("- Start each condition with its title in **double asterisks** on its own line.\n")
	b.WriteString("- Use section lines such as \"Definition:\", \"Symptoms:\", \"Treatment:\" and \"Ingredients:\".\n")
	b.WriteString("- List items on separate lines starting with \"🟢 \".\n")
	b.WriteString("- Separate sections with a blank line. Do not use HTML or other markdown.\n\n")
	b.WriteString("Reference material:\n\n")
	b.WriteString(strings.TrimSpace(knowledge.Render(entries)))
	b.WriteString("\n\nRemind the farmer to consult a veterinarian for an accurate diagnosis.")
	return b.String()
}
