package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"github.com/zhouzirui/vetchat/internal/model/knowledge"
)

const (
	keywordWeight = 3
	titleWeight   = 2
	bodyWeight    = 1

	// minTokenLen 过滤 "is"、"my" 之类的短词，避免正文命中噪声。
	minTokenLen = 3
)

// Match 是一条命中的知识条目及其得分。
type Match struct {
	Entry knowledge.Entry
	Score int
}

// Rank 按关键词得分返回与查询最相关的至多 topK 条目；得分为零的条目不返回。
// 同分时保持知识库中的原始顺序。
func Rank(query string, entries []knowledge.Entry, topK int) []Match {
	normalized := strings.TrimSpace(strings.ToLower(query))
	if normalized == "" || topK <= 0 {
		return nil
	}
	tokens := tokenize(normalized)

	matches := make([]Match, 0, len(entries))
	for _, entry := range entries {
		if score := scoreEntry(normalized, tokens, entry); score > 0 {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

func scoreEntry(query string, tokens []string, entry knowledge.Entry) int {
	score := 0
	for _, term := range entry.Terms() {
		if strings.Contains(query, term) {
			score += keywordWeight
		}
	}

	title := strings.ToLower(entry.Title)
	body := strings.ToLower(entry.Definition + " " + strings.Join(entry.Symptoms, " "))
	for _, token := range tokens {
		if strings.Contains(title, token) {
			score += titleWeight
		} else if strings.Contains(body, token) {
			score += bodyWeight
		}
	}
	return score
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTokenLen || isStopWord(f) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "what": {}, "how": {}, "for": {}, "with": {}, "does": {},
	"are": {}, "can": {}, "cow": {}, "cows": {}, "cattle": {}, "animal": {}, "treat": {},
	"treatment": {}, "symptoms": {}, "about": {}, "tell": {}, "which": {}, "why": {},
}

func isStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
