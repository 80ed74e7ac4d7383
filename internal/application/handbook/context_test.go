package handbook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"handbook-ai-api/internal/domain/entity"
)

func frag(id, doc string, page int, text string) *entity.Fragment {
	return &entity.Fragment{ID: id, SourceDocument: doc, PageNumber: page, Text: text}
}

func TestBuildGenerationContext_DropsLowestRankedOverBudget(t *testing.T) {
	fragments := []*entity.Fragment{
		frag("f1", "a.pdf", 1, strings.Repeat("x", 40)),
		frag("f2", "a.pdf", 2, strings.Repeat("y", 40)),
		frag("f3", "b.pdf", 1, strings.Repeat("z", 40)),
	}

	gc := BuildGenerationContext(fragments, 100, 0)

	// 预算 100 字符只容得下前两个片段；排名最后的被裁掉
	if assert.Len(t, gc.Fragments, 2) {
		assert.Equal(t, "f1", gc.Fragments[0].ID)
		assert.Equal(t, "f2", gc.Fragments[1].ID)
	}
}

func TestBuildGenerationContext_TruncatesOversizedFragment(t *testing.T) {
	fragments := []*entity.Fragment{
		frag("f1", "a.pdf", 1, strings.Repeat("x", 500)),
	}

	gc := BuildGenerationContext(fragments, 1000, 100)

	if assert.Len(t, gc.Fragments, 1) {
		assert.LessOrEqual(t, len([]rune(gc.Fragments[0].Text)), 100)
		// 原片段不被改动
		assert.Len(t, fragments[0].Text, 500)
	}
}

func TestBuildGenerationContext_SkipsBlankAndNilFragments(t *testing.T) {
	gc := BuildGenerationContext([]*entity.Fragment{
		nil,
		frag("f1", "a.pdf", 1, "   "),
		frag("f2", "a.pdf", 2, "real content"),
	}, 1000, 0)

	if assert.Len(t, gc.Fragments, 1) {
		assert.Equal(t, "f2", gc.Fragments[0].ID)
	}
}

func TestGenerationContext_SourcesBlock(t *testing.T) {
	gc := BuildGenerationContext([]*entity.Fragment{
		frag("f1", "guide.pdf", 3, "leader election details"),
		frag("f2", "paper.pdf", 12, "log compaction"),
	}, 1000, 0)

	block := gc.SourcesBlock()
	assert.Contains(t, block, "SOURCE 1: [source: guide.pdf, p.3]\nleader election details")
	assert.Contains(t, block, "SOURCE 2: [source: paper.pdf, p.12]\nlog compaction")
}

func TestGenerationContext_SourcesBlock_Empty(t *testing.T) {
	var gc *GenerationContext
	assert.Equal(t, "(no sources available)", gc.SourcesBlock())
	assert.Equal(t, "(no sources available)", BuildGenerationContext(nil, 1000, 0).SourcesBlock())
}

func TestGenerationContext_Citations_DedupsByDocumentAndPage(t *testing.T) {
	gc := BuildGenerationContext([]*entity.Fragment{
		frag("f1", "guide.pdf", 3, "first slice"),
		frag("f2", "guide.pdf", 3, "second slice same page"),
		frag("f3", "guide.pdf", 4, "next page"),
	}, 1000, 0)

	cits := gc.Citations()
	if assert.Len(t, cits, 2) {
		assert.Equal(t, "guide.pdf", cits[0].SourceDocument)
		assert.Equal(t, 3, cits[0].PageNumber)
		assert.Equal(t, 4, cits[1].PageNumber)
	}
}
