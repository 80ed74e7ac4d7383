package dto

import (
	"strings"

	"handbook-ai-api/internal/application/ingest"
)

// SourcePage 来源文档的单页文本
type SourcePage struct {
	Number int    `json:"number" binding:"required,min=1"`
	Text   string `json:"text"`
}

// IngestSourceRequest 来源文档摄取请求
type IngestSourceRequest struct {
	Name  string       `json:"name" binding:"required"`
	Pages []SourcePage `json:"pages" binding:"required,min=1"`
}

// ToPages 转换为摄取层页面结构
func (r *IngestSourceRequest) ToPages() []ingest.Page {
	out := make([]ingest.Page, 0, len(r.Pages))
	for _, p := range r.Pages {
		out = append(out, ingest.Page{Number: p.Number, Text: p.Text})
	}
	return out
}

// Validate 请求级校验
func (r *IngestSourceRequest) Validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "source name is required"
	}
	if len(r.Name) > 512 {
		return "source name too long"
	}
	return ""
}

// IngestSourceResponse 摄取结果响应
type IngestSourceResponse struct {
	Document  string `json:"document"`
	Fragments int    `json:"fragments"`
}
