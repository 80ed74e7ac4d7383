package handbook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/domain/entity"
)

func groundedNode(content string) *entity.OutlineNode {
	return &entity.OutlineNode{
		ID:      "s1",
		Level:   entity.LevelSection,
		Title:   "Raft",
		Content: content,
		Grounding: []entity.Citation{
			{FragmentID: "f1", SourceDocument: "paper.pdf", PageNumber: 3},
			{FragmentID: "f2", SourceDocument: "paper.pdf", PageNumber: 4},
		},
	}
}

func TestValidator_KeepsGroundedCitations(t *testing.T) {
	node := groundedNode("Leaders are elected by majority vote [source: paper.pdf, p.3]. Logs replicate [source: paper.pdf, p.4].")
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.Contains(t, node.Content, "[source: paper.pdf, p.3]")
	assert.Contains(t, node.Content, "[source: paper.pdf, p.4]")
	assert.Empty(t, diag.DroppedCitations)
	if assert.Len(t, node.CitationsUsed, 2) {
		assert.Equal(t, "f1", node.CitationsUsed[0].FragmentID)
	}
}

func TestValidator_StripsOrphanCitations(t *testing.T) {
	node := groundedNode("A claim [source: paper.pdf, p.9] and a grounded one [source: paper.pdf, p.3].")
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.NotContains(t, node.Content, "p.9")
	assert.Contains(t, node.Content, "[source: paper.pdf, p.3]")

	if assert.Len(t, diag.DroppedCitations, 1) {
		assert.Equal(t, "s1", diag.DroppedCitations[0].NodeID)
		assert.Equal(t, "[source: paper.pdf, p.9]", diag.DroppedCitations[0].Tag)
	}
	if assert.Len(t, node.CitationsUsed, 1) {
		assert.Equal(t, 3, node.CitationsUsed[0].PageNumber)
	}
}

func TestValidator_StripsUnknownDocument(t *testing.T) {
	node := groundedNode("Made up [source: invented.pdf, p.3].")
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.NotContains(t, node.Content, "invented.pdf")
	assert.Len(t, diag.DroppedCitations, 1)
	assert.Empty(t, node.CitationsUsed)
}

func TestValidator_EmptyGroundingStripsEverything(t *testing.T) {
	node := &entity.OutlineNode{
		ID:      "s1",
		Level:   entity.LevelSection,
		Content: "Text [source: paper.pdf, p.3] more text.",
	}
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.Equal(t, "Text  more text.", node.Content)
	assert.Len(t, diag.DroppedCitations, 1)
}

func TestValidator_RebuildsCitationsUsedOnRevalidation(t *testing.T) {
	node := groundedNode("Only one left [source: paper.pdf, p.4].")
	node.CitationsUsed = []entity.Citation{{SourceDocument: "stale.pdf", PageNumber: 1}}
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	if assert.Len(t, node.CitationsUsed, 1) {
		assert.Equal(t, "paper.pdf", node.CitationsUsed[0].SourceDocument)
		assert.Equal(t, 4, node.CitationsUsed[0].PageNumber)
	}
}

func TestValidator_KeepsDocumentNameWithComma(t *testing.T) {
	node := &entity.OutlineNode{
		ID:      "s1",
		Level:   entity.LevelSection,
		Content: "Figures from [source: annual report, 2024.pdf, p.7] hold.",
		Grounding: []entity.Citation{
			{FragmentID: "f1", SourceDocument: "annual report, 2024.pdf", PageNumber: 7},
		},
	}
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.Contains(t, node.Content, "[source: annual report, 2024.pdf, p.7]")
	assert.Empty(t, diag.DroppedCitations)
	if assert.Len(t, node.CitationsUsed, 1) {
		assert.Equal(t, "annual report, 2024.pdf", node.CitationsUsed[0].SourceDocument)
	}
}

func TestValidator_IgnoresMalformedTags(t *testing.T) {
	node := groundedNode("Not a tag [source: paper.pdf] and [see: paper.pdf, p.3] stay untouched.")
	diag := &Diagnostics{}

	NewValidator().Validate(node, diag)

	assert.Contains(t, node.Content, "[source: paper.pdf]")
	assert.Contains(t, node.Content, "[see: paper.pdf, p.3]")
	assert.Empty(t, diag.DroppedCitations)
}
