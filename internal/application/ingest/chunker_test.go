package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChunker_RejectsInvalidWindow(t *testing.T) {
	_, err := NewChunker(0, 0)
	assert.Error(t, err)

	_, err = NewChunker(100, 100)
	assert.Error(t, err)

	_, err = NewChunker(100, -1)
	assert.Error(t, err)

	c, err := NewChunker(100, 20)
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestChunker_Split_AdjacentChunksShareOverlap(t *testing.T) {
	c, err := NewChunker(10, 4)
	assert.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split([]Page{{Number: 1, Text: text}})

	if assert.True(t, len(chunks) >= 2) {
		for i := 1; i < len(chunks); i++ {
			prev := []rune(chunks[i-1].Text)
			tail := string(prev[len(prev)-4:])
			assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
				"chunk %d should start with the last 4 chars of chunk %d", i, i-1)
		}
	}
}

func TestChunker_Split_CoversAllText(t *testing.T) {
	c, err := NewChunker(10, 4)
	assert.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split([]Page{{Number: 1, Text: text}})

	var rebuilt strings.Builder
	for i, ch := range chunks {
		if i == 0 {
			rebuilt.WriteString(ch.Text)
			continue
		}
		rebuilt.WriteString(ch.Text[4:])
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunker_Split_PageAttributionByMajority(t *testing.T) {
	c, err := NewChunker(20, 0)
	assert.NoError(t, err)

	// 窗口大小 20：第一个窗口落在第 1 页内部，最后一个窗口大部分字符属于第 2 页
	chunks := c.Split([]Page{
		{Number: 1, Text: strings.Repeat("a", 25)},
		{Number: 2, Text: strings.Repeat("b", 40)},
	})

	if assert.NotEmpty(t, chunks) {
		assert.Equal(t, 1, chunks[0].PageNumber)
		assert.Equal(t, 2, chunks[len(chunks)-1].PageNumber)
	}
}

func TestChunker_Split_TieBreaksToLowerPage(t *testing.T) {
	c, err := NewChunker(10, 0)
	assert.NoError(t, err)

	// 页间连接符归属第 2 页：窗口内 5 个字符属页 1、5 个属页 2，平票取较小页码
	chunks := c.Split([]Page{
		{Number: 1, Text: strings.Repeat("a", 5)},
		{Number: 2, Text: strings.Repeat("b", 4)},
	})

	if assert.Len(t, chunks, 1) {
		assert.Equal(t, 1, chunks[0].PageNumber)
	}
}

func TestChunker_Split_EmptyPagesProduceNoChunks(t *testing.T) {
	c, err := NewChunker(100, 10)
	assert.NoError(t, err)

	assert.Empty(t, c.Split(nil))
	assert.Empty(t, c.Split([]Page{{Number: 1, Text: "   "}, {Number: 2, Text: "\n\t"}}))
}

func TestFragments_CarryDocumentAndFingerprint(t *testing.T) {
	frags := Fragments("guide.pdf", []Chunk{
		{Text: "hello world", PageNumber: 3},
		{Text: "second chunk", PageNumber: 4},
	})

	if assert.Len(t, frags, 2) {
		assert.Equal(t, "guide.pdf", frags[0].SourceDocument)
		assert.Equal(t, 3, frags[0].PageNumber)
		assert.Equal(t, "hello world", frags[0].Text)
		assert.NotEmpty(t, frags[0].Fingerprint)
		assert.NotEqual(t, frags[0].Fingerprint, frags[1].Fingerprint)
		assert.NotEqual(t, frags[0].ID, frags[1].ID)
	}
}
