package handbook

import (
	"fmt"
	"strings"

	"handbook-ai-api/internal/domain/entity"
)

// Assembler 文档组装器：从定稿大纲渲染最终 Markdown 文档。
// 纯函数式组装，不做网络调用；同一棵树的两次组装输出逐字节一致。
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble 渲染完整文档：标题、目录、按树序排布的正文。
// 树结构非法或存在未定稿叶子时返回 ErrMalformedOutline；
// 到达组装阶段的大纲应当总是合法的，这里是针对编排缺陷的防御性检查。
func (a *Assembler) Assemble(outline *entity.Outline) (string, error) {
	if outline == nil {
		return "", fmt.Errorf("%w: outline is nil", ErrMalformedOutline)
	}
	if err := outline.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedOutline, err)
	}
	for _, leaf := range outline.Leaves() {
		if leaf.Status != entity.NodeStatusFinal {
			return "", fmt.Errorf("%w: leaf %s (%s) not finalized, status=%s", ErrMalformedOutline, leaf.ID, leaf.Title, leaf.Status)
		}
	}

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(outline.Topic)
	b.WriteString("\n\n")

	b.WriteString(a.TableOfContents(outline))
	b.WriteString("\n")

	outline.Walk(func(n *entity.OutlineNode) {
		switch n.Level {
		case entity.LevelPart:
			b.WriteString("\n# ")
			b.WriteString(n.Title)
			b.WriteString("\n")
		case entity.LevelChapter:
			b.WriteString("\n## ")
			b.WriteString(n.Title)
			b.WriteString("\n")
		case entity.LevelSection:
			b.WriteString("\n### ")
			b.WriteString(n.Title)
			b.WriteString("\n\n")
			b.WriteString(n.Content)
			b.WriteString("\n")
		}
	})

	return b.String(), nil
}

// TableOfContents 从大纲树派生目录；目录与正文结构共享同一棵树，
// 不可能出现目录与正文不一致。
func (a *Assembler) TableOfContents(outline *entity.Outline) string {
	var b strings.Builder
	b.WriteString("## Table of Contents\n\n")
	outline.Walk(func(n *entity.OutlineNode) {
		switch n.Level {
		case entity.LevelPart:
			b.WriteString("- ")
		case entity.LevelChapter:
			b.WriteString("  - ")
		case entity.LevelSection:
			b.WriteString("    - ")
		}
		b.WriteString(n.Title)
		b.WriteString("\n")
	})
	return b.String()
}
