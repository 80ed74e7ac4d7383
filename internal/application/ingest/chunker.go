// Package ingest 提供语料切分与入库
package ingest

import (
	"fmt"
	"strings"

	"handbook-ai-api/internal/domain/entity"
)

// Page 来源文档中的一页
type Page struct {
	Number int
	Text   string
}

// Chunk 切分产物，页码取片段内占比最高的页
type Chunk struct {
	Text       string
	PageNumber int
}

// Chunker 固定窗口重叠切分器
type Chunker struct {
	size    int
	overlap int
}

// NewChunker 创建切分器；overlap 必须小于 size
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d", overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split 将文档各页连接后按固定窗口切分。
// 相邻片段共享恰好 overlap 个字符；片段按来源页归属（窗口内占比最高的页）。
func (c *Chunker) Split(pages []Page) []Chunk {
	if c == nil {
		return nil
	}

	var runes []rune
	var pageOf []int
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if len(runes) > 0 {
			runes = append(runes, '\n')
			pageOf = append(pageOf, p.Number)
		}
		for _, r := range text {
			runes = append(runes, r)
			pageOf = append(pageOf, p.Number)
		}
	}
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		text := string(runes[start:end])
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				Text:       text,
				PageNumber: majorityPage(pageOf[start:end]),
			})
		}

		if end == len(runes) {
			break
		}
	}
	return chunks
}

func majorityPage(pages []int) int {
	counts := make(map[int]int, 4)
	best, bestCount := 0, -1
	for _, p := range pages {
		counts[p]++
		if counts[p] > bestCount || (counts[p] == bestCount && p < best) {
			best, bestCount = p, counts[p]
		}
	}
	return best
}

// Fragments 将切分结果转换为带指纹的语料片段
func Fragments(document string, chunks []Chunk) []*entity.Fragment {
	out := make([]*entity.Fragment, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, entity.NewFragment(document, ch.PageNumber, ch.Text))
	}
	return out
}
