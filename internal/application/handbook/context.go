package handbook

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"handbook-ai-api/internal/domain/entity"
	"handbook-ai-api/internal/workflow/node"
)

// GenerationContext 一次生成调用的接地上下文：有序片段序列加上下文预算。
// 调用返回后即丢弃；节点只保留由它导出的引用集合。
type GenerationContext struct {
	Fragments []*entity.Fragment
}

// BuildGenerationContext 按相关度顺序装入片段，超出预算时裁掉排名靠后的片段。
// 单个片段超过 fragmentCharCap 时按字符截断。
func BuildGenerationContext(fragments []*entity.Fragment, maxChars, fragmentCharCap int) *GenerationContext {
	gc := &GenerationContext{}
	if maxChars <= 0 || len(fragments) == 0 {
		return gc
	}
	if fragmentCharCap <= 0 || fragmentCharCap > maxChars {
		fragmentCharCap = maxChars
	}

	used := 0
	for _, frag := range fragments {
		if frag == nil || strings.TrimSpace(frag.Text) == "" {
			continue
		}
		text := node.TruncateByRunes(frag.Text, fragmentCharCap)
		cost := utf8.RuneCountInString(text)
		if used+cost > maxChars {
			break
		}
		used += cost

		clone := *frag
		clone.Text = text
		gc.Fragments = append(gc.Fragments, &clone)
	}
	return gc
}

// SourcesBlock 渲染提示词中的来源片段区块。
// 每个片段以其引用标记开头，模型照抄该标记即可产生合法引用。
func (g *GenerationContext) SourcesBlock() string {
	if g == nil || len(g.Fragments) == 0 {
		return "(no sources available)"
	}

	var b strings.Builder
	for i, frag := range g.Fragments {
		cit := entity.Citation{
			FragmentID:     frag.ID,
			SourceDocument: frag.SourceDocument,
			PageNumber:     frag.PageNumber,
		}
		fmt.Fprintf(&b, "SOURCE %d: %s\n%s\n\n", i+1, cit.Tag(), strings.TrimSpace(frag.Text))
	}
	return strings.TrimSpace(b.String())
}

// Citations 返回上下文覆盖的去重引用集合，作为节点的接地记录。
func (g *GenerationContext) Citations() []entity.Citation {
	if g == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(g.Fragments))
	out := make([]entity.Citation, 0, len(g.Fragments))
	for _, frag := range g.Fragments {
		cit := entity.Citation{
			FragmentID:     frag.ID,
			SourceDocument: frag.SourceDocument,
			PageNumber:     frag.PageNumber,
		}
		if _, dup := seen[cit.Key()]; dup {
			continue
		}
		seen[cit.Key()] = struct{}{}
		out = append(out, cit)
	}
	return out
}
