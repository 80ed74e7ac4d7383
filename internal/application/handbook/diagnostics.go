package handbook

import "sync"

// NodeFailure 单个节点的生成失败记录
type NodeFailure struct {
	NodeID   string `json:"node_id"`
	Title    string `json:"title"`
	Attempts int    `json:"attempts"`
	Message  string `json:"message"`
}

// DroppedCitation 被校验剔除的引用
type DroppedCitation struct {
	NodeID string `json:"node_id"`
	Tag    string `json:"tag"`
}

// Diagnostics 运行级诊断汇总，随成稿一并返回。
// 可降级的失败（生成、引用、预算）记录在此而不中断运行。
type Diagnostics struct {
	GenerationErrors []NodeFailure     `json:"generation_errors,omitempty"`
	DroppedCitations []DroppedCitation `json:"dropped_citations,omitempty"`
	BudgetExceeded   bool              `json:"budget_exceeded"`
	BudgetShortfall  int               `json:"budget_shortfall,omitempty"`
	ExpansionRounds  int               `json:"expansion_rounds"`
	TargetWords      int               `json:"target_words"`
	TotalWords       int               `json:"total_words"`

	mu sync.Mutex
}

func (d *Diagnostics) AddGenerationError(f NodeFailure) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.GenerationErrors = append(d.GenerationErrors, f)
}

func (d *Diagnostics) AddDroppedCitation(nodeID, tag string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.DroppedCitations = append(d.DroppedCitations, DroppedCitation{NodeID: nodeID, Tag: tag})
}
