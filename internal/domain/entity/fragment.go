// Package entity 定义领域实体
package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Fragment 来源片段：一段带页码归属的源文本，作为检索与引用的最小单位。
// 创建后不可变；仅在语料重置时删除。
type Fragment struct {
	ID             string  `json:"id"`
	SourceDocument string  `json:"source_document"`
	PageNumber     int     `json:"page_number"`
	Text           string  `json:"text"`
	Fingerprint    string  `json:"fingerprint"`
	EmbeddingRef   string  `json:"embedding_ref,omitempty"`
	Score          float64 `json:"score,omitempty"`
}

// NewFragment 创建新片段
func NewFragment(sourceDocument string, pageNumber int, text string) *Fragment {
	id := uuid.NewString()
	return &Fragment{
		ID:             id,
		SourceDocument: sourceDocument,
		PageNumber:     pageNumber,
		Text:           text,
		Fingerprint:    Fingerprint(text),
		EmbeddingRef:   id,
	}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Fingerprint 计算内容指纹：归一化空白与大小写后取 SHA-1
func Fingerprint(text string) string {
	norm := whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	sum := sha1.Sum([]byte(norm))
	return hex.EncodeToString(sum[:])
}
