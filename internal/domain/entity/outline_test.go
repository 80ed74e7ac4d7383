package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleOutline() *Outline {
	return &Outline{
		Topic: "Distributed Systems",
		Nodes: []*OutlineNode{
			{ID: "p1", Level: LevelPart, Title: "Foundations", Order: 0, Status: NodeStatusPlanned},
			{ID: "c1", Level: LevelChapter, Title: "Consensus", ParentID: "p1", Order: 0, Status: NodeStatusPlanned},
			{ID: "s1", Level: LevelSection, Title: "Paxos", ParentID: "c1", Order: 0, TargetWords: 400, Status: NodeStatusPlanned},
			{ID: "s2", Level: LevelSection, Title: "Raft", ParentID: "c1", Order: 1, TargetWords: 600, Status: NodeStatusPlanned},
			{ID: "c2", Level: LevelChapter, Title: "Replication", ParentID: "p1", Order: 1, Status: NodeStatusPlanned},
			{ID: "s3", Level: LevelSection, Title: "Quorums", ParentID: "c2", Order: 0, TargetWords: 500, Status: NodeStatusPlanned},
		},
	}
}

func TestOutline_Walk_VisitsDocumentOrder(t *testing.T) {
	o := sampleOutline()

	var ids []string
	o.Walk(func(n *OutlineNode) { ids = append(ids, n.ID) })

	assert.Equal(t, []string{"p1", "c1", "s1", "s2", "c2", "s3"}, ids)
}

func TestOutline_Leaves_ReturnsSectionsInOrder(t *testing.T) {
	o := sampleOutline()

	leaves := o.Leaves()
	if assert.Len(t, leaves, 3) {
		assert.Equal(t, "s1", leaves[0].ID)
		assert.Equal(t, "s2", leaves[1].ID)
		assert.Equal(t, "s3", leaves[2].ID)
	}
	assert.Equal(t, 1500, o.TargetTotal())
}

func TestOutline_Validate_AcceptsWellFormedTree(t *testing.T) {
	assert.NoError(t, sampleOutline().Validate())
}

func TestOutline_Validate_RejectsMissingParent(t *testing.T) {
	o := sampleOutline()
	o.Node("s3").ParentID = "ghost"

	err := o.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "missing parent")
	}
}

func TestOutline_Validate_RejectsCycle(t *testing.T) {
	o := sampleOutline()
	o.Node("p1").ParentID = "s1"

	err := o.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "cycle")
	}
}

func TestOutline_Validate_RejectsSparseSiblingOrder(t *testing.T) {
	o := sampleOutline()
	o.Node("s2").Order = 5

	assert.Error(t, o.Validate())
}

func TestOutline_Validate_RejectsLeafWithoutTarget(t *testing.T) {
	o := sampleOutline()
	o.Node("s1").TargetWords = 0

	err := o.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "word target")
	}
}

func TestOutlineNode_Ratio(t *testing.T) {
	n := &OutlineNode{TargetWords: 100, Content: "one two three four five"}
	assert.InDelta(t, 0.05, n.Ratio(), 1e-9)

	n.TargetWords = 0
	assert.Equal(t, float64(1), n.Ratio())
}

func TestOutlineNode_StatusTransitions(t *testing.T) {
	n := &OutlineNode{ID: "s1", Level: LevelSection, Status: NodeStatusPlanned}

	assert.NoError(t, n.BeginDraft())
	assert.Equal(t, NodeStatusDrafting, n.Status)

	// 起草中不能再次起草或扩写
	assert.Error(t, n.BeginDraft())
	assert.Error(t, n.BeginExpand())

	assert.NoError(t, n.CompleteDraft())
	assert.NoError(t, n.BeginExpand())
	assert.NoError(t, n.CompleteDraft())

	assert.NoError(t, n.Finalize())
	assert.Equal(t, NodeStatusFinal, n.Status)

	// Final 为终态：重复定稿幂等，回退被拒绝
	assert.NoError(t, n.Finalize())
	assert.Error(t, n.BeginDraft())
	assert.Error(t, n.BeginExpand())
}

func TestOutlineNode_AppendContent_IsMonotonic(t *testing.T) {
	n := &OutlineNode{}

	n.AppendContent("first paragraph")
	assert.Equal(t, "first paragraph", n.Content)

	n.AppendContent("  ")
	assert.Equal(t, "first paragraph", n.Content)

	n.AppendContent("second paragraph")
	assert.Equal(t, "first paragraph\n\nsecond paragraph", n.Content)
	assert.Equal(t, 4, n.WordCount())
}
