package handbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/domain/entity"
)

func finalizedOutline() *entity.Outline {
	return &entity.Outline{
		Topic: "Distributed Systems",
		Nodes: []*entity.OutlineNode{
			{ID: "p1", Level: entity.LevelPart, Title: "Foundations", Order: 0, Status: entity.NodeStatusFinal},
			{ID: "c1", Level: entity.LevelChapter, Title: "Consensus", ParentID: "p1", Order: 0, Status: entity.NodeStatusFinal},
			{ID: "s1", Level: entity.LevelSection, Title: "Paxos", ParentID: "c1", Order: 0, TargetWords: 10,
				Content: "Paxos body.", Status: entity.NodeStatusFinal},
			{ID: "s2", Level: entity.LevelSection, Title: "Raft", ParentID: "c1", Order: 1, TargetWords: 10,
				Content: "Raft body.", Status: entity.NodeStatusFinal},
		},
	}
}

func TestAssembler_Assemble_RendersTitleTOCAndBody(t *testing.T) {
	doc, err := NewAssembler().Assemble(finalizedOutline())
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "# Distributed Systems\n\n"))
	assert.Contains(t, doc, "## Table of Contents")
	assert.Contains(t, doc, "\n# Foundations\n")
	assert.Contains(t, doc, "\n## Consensus\n")
	assert.Contains(t, doc, "\n### Paxos\n\nPaxos body.\n")
	assert.Contains(t, doc, "\n### Raft\n\nRaft body.\n")

	// 目录出现在正文之前
	assert.Less(t, strings.Index(doc, "Table of Contents"), strings.Index(doc, "Paxos body."))
}

func TestAssembler_Assemble_IsByteIdenticalAcrossCalls(t *testing.T) {
	outline := finalizedOutline()
	a := NewAssembler()

	first, err := a.Assemble(outline)
	assert.NoError(t, err)
	second, err := a.Assemble(outline)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssembler_TableOfContents_MirrorsTree(t *testing.T) {
	toc := NewAssembler().TableOfContents(finalizedOutline())

	assert.Equal(t, "## Table of Contents\n\n- Foundations\n  - Consensus\n    - Paxos\n    - Raft\n", toc)
}

func TestAssembler_Assemble_RejectsUnfinalizedLeaf(t *testing.T) {
	outline := finalizedOutline()
	outline.Node("s2").Status = entity.NodeStatusDrafted

	_, err := NewAssembler().Assemble(outline)
	assert.ErrorIs(t, err, ErrMalformedOutline)
}

func TestAssembler_Assemble_RejectsBrokenTree(t *testing.T) {
	outline := finalizedOutline()
	outline.Node("s1").ParentID = "missing"

	_, err := NewAssembler().Assemble(outline)
	assert.ErrorIs(t, err, ErrMalformedOutline)

	_, err = NewAssembler().Assemble(nil)
	assert.ErrorIs(t, err, ErrMalformedOutline)
}
