package handbook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/domain/entity"
)

const wellFormedOutline = `
Part 1: Foundations
Chapter 1: Consensus
Section 1.1: Paxos (400 words)
Section 1.2: Raft (600 words)
Chapter 2: Replication
Section 2.1: Quorums (500 words)
Part 2: Practice
Chapter 3: Deployments
Section 3.1: Topologies (300 words)
`

func TestParseOutline_BuildsTree(t *testing.T) {
	outline, err := ParseOutline("Distributed Systems", wellFormedOutline)
	assert.NoError(t, err)

	assert.Equal(t, "Distributed Systems", outline.Topic)
	assert.NoError(t, outline.Validate())

	leaves := outline.Leaves()
	if assert.Len(t, leaves, 4) {
		assert.Equal(t, "Paxos", leaves[0].Title)
		assert.Equal(t, 400, leaves[0].TargetWords)
		assert.Equal(t, "Topologies", leaves[3].Title)
	}

	parts := outline.Children("")
	if assert.Len(t, parts, 2) {
		assert.Equal(t, "Foundations", parts[0].Title)
		assert.Equal(t, "Practice", parts[1].Title)
		assert.Len(t, outline.Children(parts[0].ID), 2)
	}
}

func TestParseOutline_IgnoresMarkdownDecorationAndProse(t *testing.T) {
	text := `
Here is the outline you asked for:

## Part 1: Basics
 - Chapter 1: Getting Started
 * Section 1.1: Installation (250 words)

Hope this helps!
`
	outline, err := ParseOutline("Tooling", text)
	assert.NoError(t, err)

	leaves := outline.Leaves()
	if assert.Len(t, leaves, 1) {
		assert.Equal(t, "Installation", leaves[0].Title)
		assert.Equal(t, 250, leaves[0].TargetWords)
	}
}

func TestParseOutline_InsertsImplicitPart(t *testing.T) {
	text := `
Chapter 1: Only Chapter
Section 1.1: Only Section (100 words)
`
	outline, err := ParseOutline("Small Topic", text)
	assert.NoError(t, err)

	parts := outline.Children("")
	if assert.Len(t, parts, 1) {
		assert.Equal(t, entity.LevelPart, parts[0].Level)
		assert.Equal(t, "Small Topic", parts[0].Title)
	}
	assert.NoError(t, outline.Validate())
}

func TestParseOutline_SectionBeforeChapterIsError(t *testing.T) {
	_, err := ParseOutline("Topic", "Section 1.1: Orphan (100 words)")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "before any chapter")
	}
}

func TestParseOutline_SectionWithoutWordTargetIsIgnored(t *testing.T) {
	text := `
Chapter 1: Alpha
Section 1.1: No Target
`
	_, err := ParseOutline("Topic", text)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "no section lines")
	}
}

func TestParseOutline_NoSectionsIsError(t *testing.T) {
	_, err := ParseOutline("Topic", "Part 1: Lonely\nChapter 1: Empty")
	assert.Error(t, err)
}

func TestScaleTargets_RaisesTotalsToGlobalTarget(t *testing.T) {
	outline, err := ParseOutline("Topic", `
Chapter 1: Alpha
Section 1.1: One (100 words)
Section 1.2: Two (300 words)
`)
	assert.NoError(t, err)

	ScaleTargets(outline, 1000)

	leaves := outline.Leaves()
	assert.GreaterOrEqual(t, outline.TargetTotal(), 1000)
	// 比例保持：第二节目标约为第一节的三倍
	assert.Equal(t, 750, leaves[1].TargetWords)
}

func TestScaleTargets_NoopWhenAlreadySufficient(t *testing.T) {
	outline, err := ParseOutline("Topic", `
Chapter 1: Alpha
Section 1.1: One (800 words)
`)
	assert.NoError(t, err)

	ScaleTargets(outline, 500)
	assert.Equal(t, 800, outline.Leaves()[0].TargetWords)
}
