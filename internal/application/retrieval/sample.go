package retrieval

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"handbook-ai-api/internal/domain/entity"
)

// SampleParams 规划取样参数
type SampleParams struct {
	Topic         string
	PerDocument   int
	MaxTotal      int
	ScanLimit     int
	listBatchSize int
}

const defaultListBatch = 500

// PlannerSample 为大纲规划取样：扫描语料库，按主题关键词打分，
// 每个来源文档内取分高者，再跨文档轮询合并，保证取样覆盖所有来源。
func (e *Engine) PlannerSample(ctx context.Context, params SampleParams) ([]*entity.Fragment, error) {
	if !e.Enabled() {
		return nil, ErrVectorDisabled
	}
	if err := e.ensureReady(ctx); err != nil {
		return nil, err
	}

	if params.PerDocument <= 0 {
		params.PerDocument = 30
	}
	if params.MaxTotal <= 0 {
		params.MaxTotal = 120
	}
	if params.ScanLimit <= 0 {
		params.ScanLimit = 2000
	}
	if params.listBatchSize <= 0 {
		params.listBatchSize = defaultListBatch
	}

	keywords := TopicKeywords(params.Topic)

	scanned := 0
	afterID := ""
	seen := make(map[string]struct{})
	byDoc := make(map[string][]*entity.Fragment)

	for scanned < params.ScanLimit {
		batch := params.listBatchSize
		if remaining := params.ScanLimit - scanned; remaining < batch {
			batch = remaining
		}

		rows, err := e.vector.ListFragments(ctx, afterID, batch)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
		scanned += len(rows)
		afterID = rows[len(rows)-1].ID

		for _, row := range rows {
			if row == nil || strings.TrimSpace(row.TextContent) == "" {
				continue
			}
			fp := row.Fingerprint
			if fp == "" {
				fp = entity.Fingerprint(row.TextContent)
			}
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}

			frag := &entity.Fragment{
				ID:             row.ID,
				SourceDocument: row.DocumentName,
				PageNumber:     row.PageNumber,
				Text:           row.TextContent,
				Fingerprint:    fp,
				EmbeddingRef:   row.ID,
				Score:          keywordScore(row.TextContent, keywords),
			}
			byDoc[frag.SourceDocument] = append(byDoc[frag.SourceDocument], frag)
		}
	}

	if scanned == 0 {
		return nil, ErrEmptyCorpus
	}

	docs := make([]string, 0, len(byDoc))
	for doc := range byDoc {
		docs = append(docs, doc)
		frags := byDoc[doc]
		sort.SliceStable(frags, func(i, j int) bool {
			return frags[i].Score > frags[j].Score
		})
		if len(frags) > params.PerDocument {
			byDoc[doc] = frags[:params.PerDocument]
		}
	}
	sort.Strings(docs)

	// 跨文档轮询，避免单一来源挤占样本
	out := make([]*entity.Fragment, 0, params.MaxTotal)
	for round := 0; len(out) < params.MaxTotal; round++ {
		progressed := false
		for _, doc := range docs {
			frags := byDoc[doc]
			if round >= len(frags) {
				continue
			}
			out = append(out, frags[round])
			progressed = true
			if len(out) >= params.MaxTotal {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out, nil
}

var keywordRE = regexp.MustCompile(`[a-zA-Z]{4,}`)

const maxTopicKeywords = 12

// TopicKeywords 从主题抽取打分关键词（长度不小于 4 的单词，最多取前 12 个）
func TopicKeywords(topic string) []string {
	words := keywordRE.FindAllString(strings.ToLower(topic), -1)
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, maxTopicKeywords)
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxTopicKeywords {
			break
		}
	}
	return out
}

func keywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	var score float64
	for _, kw := range keywords {
		score += float64(strings.Count(lower, kw))
	}
	return score
}
