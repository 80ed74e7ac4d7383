// Package handbook 实现长文手册生成核心：大纲规划、分节写作、
// 词数预算扩写、引用校验与成稿装配。
package handbook

import (
	"errors"
	"fmt"
)

var (
	// ErrOutlinePlanning 大纲在一次纠偏重试后仍不可解析，整个运行失败。
	ErrOutlinePlanning = errors.New("outline planning failed")
	// ErrBudgetExceeded 扩写达到迭代上限仍未达到目标词数；运行继续装配，缺口记入诊断。
	ErrBudgetExceeded = errors.New("word budget not met after max expansion iterations")
	// ErrMalformedOutline 装配时发现大纲树结构损坏（环或悬空父节点）。
	ErrMalformedOutline = errors.New("outline tree is malformed")
)

// GenerationError 单个节点的生成调用重试耗尽。
// 非致命：节点以占位内容保留，错误汇入运行诊断。
type GenerationError struct {
	NodeID   string
	Title    string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for node %s (%s) after %d attempts: %v",
		e.NodeID, e.Title, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
