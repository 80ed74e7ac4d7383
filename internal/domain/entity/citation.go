package entity

import "fmt"

// Citation 行内引用：指向生成该段文字时提供的某个来源片段。
// 仅当 (SourceDocument, PageNumber) 命中该节点最后一次生成上下文中的片段时有效。
type Citation struct {
	FragmentID     string `json:"fragment_id,omitempty"`
	SourceDocument string `json:"source_document"`
	PageNumber     int    `json:"page_number"`
}

// Tag 渲染为行内引用标签的固定文法
func (c Citation) Tag() string {
	return fmt.Sprintf("[source: %s, p.%d]", c.SourceDocument, c.PageNumber)
}

// Key 返回 (文档, 页码) 去重键
func (c Citation) Key() string {
	return fmt.Sprintf("%s#%d", c.SourceDocument, c.PageNumber)
}
