package handbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"handbook-ai-api/internal/domain/entity"
)

// 大纲行文法固定为三种形式：
//
//	Part 1: Title
//	Chapter 2: Title
//	Section 2.1: Title (450 words)
var (
	partLineRE    = regexp.MustCompile(`(?i)^part\s+\d+\s*[:：]\s*(.+?)\s*$`)
	chapterLineRE = regexp.MustCompile(`(?i)^chapter\s+[\d.]+\s*[:：]\s*(.+?)\s*$`)
	sectionLineRE = regexp.MustCompile(`(?i)^section\s+[\d.]+\s*[:：]\s*(.+?)\s*[（(](\d+)\s*words?[）)]\s*$`)
	linePrefixRE  = regexp.MustCompile(`^[\s#*>-]+`)
)

// ParseOutline 按固定文法解析模型产出的大纲文本并构建大纲树。
// 任何结构问题（无叶子、节缺少所属章、标题为空）都作为错误返回，
// 由规划器决定是否带纠偏说明重试。
func ParseOutline(topic, text string) (*entity.Outline, error) {
	outline := &entity.Outline{Topic: strings.TrimSpace(topic)}

	var (
		currentPart    *entity.OutlineNode
		currentChapter *entity.OutlineNode
		partOrder      int
		chapterOrder   int
		sectionOrder   int
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(linePrefixRE.ReplaceAllString(strings.TrimSpace(raw), ""))
		if line == "" {
			continue
		}

		if m := partLineRE.FindStringSubmatch(line); m != nil {
			currentPart = &entity.OutlineNode{
				ID:     uuid.NewString(),
				Level:  entity.LevelPart,
				Title:  strings.TrimSpace(m[1]),
				Order:  partOrder,
				Status: entity.NodeStatusPlanned,
			}
			partOrder++
			chapterOrder = 0
			currentChapter = nil
			outline.Nodes = append(outline.Nodes, currentPart)
			continue
		}

		if m := chapterLineRE.FindStringSubmatch(line); m != nil {
			if currentPart == nil {
				// 模型省略了分部时补一个隐式部，保持树形完整
				currentPart = &entity.OutlineNode{
					ID:     uuid.NewString(),
					Level:  entity.LevelPart,
					Title:  outline.Topic,
					Order:  partOrder,
					Status: entity.NodeStatusPlanned,
				}
				partOrder++
				outline.Nodes = append(outline.Nodes, currentPart)
			}
			currentChapter = &entity.OutlineNode{
				ID:       uuid.NewString(),
				Level:    entity.LevelChapter,
				Title:    strings.TrimSpace(m[1]),
				ParentID: currentPart.ID,
				Order:    chapterOrder,
				Status:   entity.NodeStatusPlanned,
			}
			chapterOrder++
			sectionOrder = 0
			outline.Nodes = append(outline.Nodes, currentChapter)
			continue
		}

		if m := sectionLineRE.FindStringSubmatch(line); m != nil {
			if currentChapter == nil {
				return nil, fmt.Errorf("section %q appears before any chapter", strings.TrimSpace(m[1]))
			}
			words, err := strconv.Atoi(m[2])
			if err != nil || words <= 0 {
				return nil, fmt.Errorf("section %q has invalid word target %q", strings.TrimSpace(m[1]), m[2])
			}
			outline.Nodes = append(outline.Nodes, &entity.OutlineNode{
				ID:          uuid.NewString(),
				Level:       entity.LevelSection,
				Title:       strings.TrimSpace(m[1]),
				ParentID:    currentChapter.ID,
				Order:       sectionOrder,
				TargetWords: words,
				Status:      entity.NodeStatusPlanned,
			})
			sectionOrder++
			continue
		}

		// 其它行（前言、解释文字）忽略
	}

	if len(outline.Leaves()) == 0 {
		return nil, fmt.Errorf("outline contains no section lines")
	}
	if err := outline.Validate(); err != nil {
		return nil, err
	}
	return outline, nil
}

// ScaleTargets 当叶子目标之和低于全局目标时按比例放大各叶子目标，
// 保证目标总量不低于 targetWords。已达标则不做改动。
func ScaleTargets(outline *entity.Outline, targetWords int) {
	if outline == nil || targetWords <= 0 {
		return
	}
	total := outline.TargetTotal()
	if total <= 0 || total >= targetWords {
		return
	}

	leaves := outline.Leaves()
	for _, leaf := range leaves {
		scaled := leaf.TargetWords * targetWords / total
		if scaled < 1 {
			scaled = 1
		}
		leaf.TargetWords = scaled
	}

	// 整数缩放的余数补到首个叶子，保证总和不低于目标
	if rem := targetWords - outline.TargetTotal(); rem > 0 && len(leaves) > 0 {
		leaves[0].TargetWords += rem
	}
}
