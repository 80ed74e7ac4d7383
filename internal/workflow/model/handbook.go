package model

import "time"

// OutlinePlanInput 大纲规划输入
type OutlinePlanInput struct {
	Topic        string
	TargetWords  int
	SourcesBlock string
	// Corrective 首次产出不可解析时的纠偏说明，追加到用户消息尾部。
	Corrective  string
	Provider    string
	Model       string
	Temperature *float32
	MaxTokens   *int
}

// OutlinePlanOutput 大纲规划输出
type OutlinePlanOutput struct {
	Text string
	Meta LLMUsageMeta
}

// SectionWriteInput 小节写作输入
type SectionWriteInput struct {
	Topic        string
	SectionTitle string
	SourcesBlock string
	// Covered 已覆盖小节标题尾部，用于避免重复展开。
	Covered []string
	// Extend 为真时表示在已有内容基础上补写。
	Extend       bool
	ExistingText string
	MinWords     int
	MaxWords     int
	Provider     string
	Model        string
	Temperature  *float32
	MaxTokens    *int
}

// SectionWriteOutput 小节写作输出
type SectionWriteOutput struct {
	Text string
	Meta LLMUsageMeta
}

// LLMUsageMeta 模型调用元信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}
