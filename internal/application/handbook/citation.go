package handbook

import (
	"regexp"
	"strconv"
	"strings"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/pkg/metrics"
)

// citationRE 引用标签的固定文法：[source: <document>, p.<page>]。
// 文档名由用户在入库时提供，可能含逗号，故以页码标记前的逗号为分隔。
var citationRE = regexp.MustCompile(`\[source:\s*([^\[\]]+?),\s*p\.(\d+)\]`)

// Validator 引用校验器：剔除 grounding 之外的孤儿引用。
// 校验只做剔除与记录，从不使节点或整体运行失败。
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate 对单个节点执行引用校验：
// 内容中每个引用标签与节点 grounding 的 (文档, 页码) 对照，
// 不匹配者从内容中剔除并记入诊断；匹配者去重后写入 CitationsUsed。
func (v *Validator) Validate(node *entity.OutlineNode, diag *Diagnostics) {
	if node == nil || node.Content == "" {
		return
	}

	allowed := make(map[string]entity.Citation, len(node.Grounding))
	for _, c := range node.Grounding {
		allowed[c.Key()] = c
	}

	used := make(map[string]entity.Citation)
	node.Content = citationRE.ReplaceAllStringFunc(node.Content, func(tag string) string {
		m := citationRE.FindStringSubmatch(tag)
		doc := strings.TrimSpace(m[1])
		page, err := strconv.Atoi(m[2])
		if err != nil {
			page = 0
		}
		c := entity.Citation{SourceDocument: doc, PageNumber: page}
		if kept, ok := allowed[c.Key()]; ok {
			used[kept.Key()] = kept
			return tag
		}
		diag.AddDroppedCitation(node.ID, tag)
		metrics.DroppedCitationsTotal.Inc()
		return ""
	})

	node.CitationsUsed = node.CitationsUsed[:0]
	for _, c := range node.Grounding {
		if kept, ok := used[c.Key()]; ok {
			node.CitationsUsed = append(node.CitationsUsed, kept)
		}
	}
}
