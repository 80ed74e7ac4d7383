package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	llmctx "handbook-ai-api/internal/domain/service"
	wfmodel "handbook-ai-api/internal/workflow/model"
	workflowport "handbook-ai-api/internal/workflow/port"
	workflowprompt "handbook-ai-api/internal/workflow/prompt"
)

type SectionChain struct {
	factory workflowport.ChatModelFactory
}

func NewSectionChain(factory workflowport.ChatModelFactory) *SectionChain {
	return &SectionChain{factory: factory}
}

var sectionPromptRegistry = workflowprompt.NewRegistry()

func (c *SectionChain) Invoke(ctx context.Context, in *wfmodel.SectionWriteInput) (*wfmodel.SectionWriteOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.SectionTitle) == "" {
		return nil, fmt.Errorf("section title is required")
	}
	if in.MinWords <= 0 || in.MaxWords < in.MinWords {
		return nil, fmt.Errorf("word bounds are invalid")
	}

	workflow := "section_write"
	if in.Extend {
		workflow = "section_expand"
	}
	ctx = llmctx.WithWorkflowProvider(ctx, workflow, strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatSectionMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in.Model, in.Temperature, in.MaxTokens)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil || strings.TrimSpace(outMsg.Content) == "" {
		return nil, fmt.Errorf("empty llm response")
	}

	return &wfmodel.SectionWriteOutput{
		Text: outMsg.Content,
		Meta: usageMeta(in.Provider, in.Model, outMsg),
	}, nil
}

func formatSectionMessages(ctx context.Context, in *wfmodel.SectionWriteInput) ([]*schema.Message, error) {
	id := workflowprompt.PromptSectionWriteV1
	if in.Extend {
		id = workflowprompt.PromptSectionExpandV1
	}

	tpl, err := sectionPromptRegistry.ChatTemplate(id)
	if err != nil {
		return nil, err
	}

	covered := "(none yet)"
	if len(in.Covered) > 0 {
		covered = "- " + strings.Join(in.Covered, "\n- ")
	}

	vars := map[string]any{
		"topic":         strings.TrimSpace(in.Topic),
		"section_title": strings.TrimSpace(in.SectionTitle),
		"min_words":     in.MinWords,
		"max_words":     in.MaxWords,
		"covered":       covered,
		"sources_block": strings.TrimSpace(in.SourcesBlock),
	}
	if in.Extend {
		vars["existing"] = strings.TrimSpace(in.ExistingText)
	}
	return tpl.Format(ctx, vars)
}
