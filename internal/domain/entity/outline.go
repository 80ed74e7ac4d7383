package entity

import (
	"fmt"
	"sort"
	"strings"
)

// OutlineLevel 大纲层级
type OutlineLevel string

const (
	LevelPart    OutlineLevel = "part"
	LevelChapter OutlineLevel = "chapter"
	LevelSection OutlineLevel = "section"
)

// NodeStatus 节点状态
type NodeStatus string

const (
	NodeStatusPlanned   NodeStatus = "planned"
	NodeStatusDrafting  NodeStatus = "drafting"
	NodeStatusDrafted   NodeStatus = "drafted"
	NodeStatusExpanding NodeStatus = "expanding"
	NodeStatusFinal     NodeStatus = "final"
)

// OutlineNode 大纲节点：手册结构的一个单元（部/章/节）。
// 由规划器创建；内容与状态由写作器推进；终态为 Final，之后不再变更。
type OutlineNode struct {
	ID          string       `json:"id"`
	Level       OutlineLevel `json:"level"`
	Title       string       `json:"title"`
	ParentID    string       `json:"parent_id,omitempty"`
	Order       int          `json:"order"`
	TargetWords int          `json:"target_words"`
	Content     string       `json:"content,omitempty"`
	Status      NodeStatus   `json:"status"`

	// Grounding 最后一次生成调用提供的来源片段引用，决定引用标签的有效范围
	Grounding []Citation `json:"grounding,omitempty"`
	// CitationsUsed 校验后保留的有效引用
	CitationsUsed []Citation `json:"citations_used,omitempty"`
}

// IsLeaf 是否为叶子（节级）节点
func (n *OutlineNode) IsLeaf() bool {
	return n.Level == LevelSection
}

// WordCount 当前内容的词数
func (n *OutlineNode) WordCount() int {
	return len(strings.Fields(n.Content))
}

// Ratio 实际词数相对目标的比值；无目标时视为已达标
func (n *OutlineNode) Ratio() float64 {
	if n.TargetWords <= 0 {
		return 1
	}
	return float64(n.WordCount()) / float64(n.TargetWords)
}

// BeginDraft 进入起草状态
func (n *OutlineNode) BeginDraft() error {
	if n.Status != NodeStatusPlanned {
		return fmt.Errorf("node %s: cannot draft from status %s", n.ID, n.Status)
	}
	n.Status = NodeStatusDrafting
	return nil
}

// BeginExpand 进入扩写状态
func (n *OutlineNode) BeginExpand() error {
	if n.Status != NodeStatusDrafted {
		return fmt.Errorf("node %s: cannot expand from status %s", n.ID, n.Status)
	}
	n.Status = NodeStatusExpanding
	return nil
}

// CompleteDraft 完成一次起草/扩写
func (n *OutlineNode) CompleteDraft() error {
	if n.Status != NodeStatusDrafting && n.Status != NodeStatusExpanding {
		return fmt.Errorf("node %s: cannot complete draft from status %s", n.ID, n.Status)
	}
	n.Status = NodeStatusDrafted
	return nil
}

// Finalize 定稿；Final 为终态，不可回退
func (n *OutlineNode) Finalize() error {
	if n.Status == NodeStatusFinal {
		return nil
	}
	if n.Status != NodeStatusDrafted {
		return fmt.Errorf("node %s: cannot finalize from status %s", n.ID, n.Status)
	}
	n.Status = NodeStatusFinal
	return nil
}

// AppendContent 追加内容（扩写只增不减，保证字数单调不减）
func (n *OutlineNode) AppendContent(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if n.Content == "" {
		n.Content = text
		return
	}
	n.Content = n.Content + "\n\n" + text
}

// SetGrounding 记录最后一次生成上下文的来源引用
func (n *OutlineNode) SetGrounding(refs []Citation) {
	n.Grounding = refs
}

// Outline 完整大纲树（扁平存储，树形关系由 ParentID 表达）
type Outline struct {
	Topic string         `json:"topic"`
	Nodes []*OutlineNode `json:"nodes"`
}

// Node 按 ID 查找节点
func (o *Outline) Node(id string) *OutlineNode {
	for _, n := range o.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Children 返回某节点的有序子节点；parentID 为空返回根节点（部）
func (o *Outline) Children(parentID string) []*OutlineNode {
	var out []*OutlineNode
	for _, n := range o.Nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Walk 深度优先遍历大纲（文档顺序）
func (o *Outline) Walk(fn func(n *OutlineNode)) {
	var visit func(parentID string)
	visit = func(parentID string) {
		for _, n := range o.Children(parentID) {
			fn(n)
			visit(n.ID)
		}
	}
	visit("")
}

// Leaves 按文档顺序返回所有叶子节点
func (o *Outline) Leaves() []*OutlineNode {
	var out []*OutlineNode
	o.Walk(func(n *OutlineNode) {
		if n.IsLeaf() {
			out = append(out, n)
		}
	})
	return out
}

// TargetTotal 叶子节点目标字数之和
func (o *Outline) TargetTotal() int {
	total := 0
	for _, n := range o.Leaves() {
		total += n.TargetWords
	}
	return total
}

// WordTotal 叶子节点实际字数之和
func (o *Outline) WordTotal() int {
	total := 0
	for _, n := range o.Leaves() {
		total += n.WordCount()
	}
	return total
}

// Validate 校验大纲结构：标题非空、父引用存在且无环、兄弟序号连续
func (o *Outline) Validate() error {
	if len(o.Nodes) == 0 {
		return fmt.Errorf("outline has no nodes")
	}

	byID := make(map[string]*OutlineNode, len(o.Nodes))
	for _, n := range o.Nodes {
		if strings.TrimSpace(n.Title) == "" {
			return fmt.Errorf("node %s has empty title", n.ID)
		}
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		byID[n.ID] = n
	}

	// 父引用存在且沿 ParentID 上溯无环
	for _, n := range o.Nodes {
		if n.ParentID == "" {
			continue
		}
		seen := map[string]bool{n.ID: true}
		cur := n
		for cur.ParentID != "" {
			parent, ok := byID[cur.ParentID]
			if !ok {
				return fmt.Errorf("node %s references missing parent %s", cur.ID, cur.ParentID)
			}
			if seen[parent.ID] {
				return fmt.Errorf("cycle detected at node %s", parent.ID)
			}
			seen[parent.ID] = true
			cur = parent
		}
	}

	// 兄弟序号构成从 0 起的连续序列
	groups := make(map[string][]*OutlineNode)
	for _, n := range o.Nodes {
		groups[n.ParentID] = append(groups[n.ParentID], n)
	}
	for parentID, siblings := range groups {
		sort.Slice(siblings, func(i, j int) bool { return siblings[i].Order < siblings[j].Order })
		for i, n := range siblings {
			if n.Order != i {
				return fmt.Errorf("sibling order not dense under parent %q: got %d at position %d", parentID, n.Order, i)
			}
		}
	}

	// 叶子节点必须带字数目标
	for _, n := range o.Leaves() {
		if n.TargetWords <= 0 {
			return fmt.Errorf("leaf node %s (%s) has no word target", n.ID, n.Title)
		}
	}

	return nil
}
