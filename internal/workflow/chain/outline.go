package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	llmctx "handbook-ai-api/internal/domain/service"
	wfmodel "handbook-ai-api/internal/workflow/model"
	workflowport "handbook-ai-api/internal/workflow/port"
	workflowprompt "handbook-ai-api/internal/workflow/prompt"
)

type OutlineChain struct {
	factory workflowport.ChatModelFactory
}

func NewOutlineChain(factory workflowport.ChatModelFactory) *OutlineChain {
	return &OutlineChain{factory: factory}
}

var outlinePromptRegistry = workflowprompt.NewRegistry()

func (c *OutlineChain) Invoke(ctx context.Context, in *wfmodel.OutlinePlanInput) (*wfmodel.OutlinePlanOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Topic) == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if in.TargetWords <= 0 {
		return nil, fmt.Errorf("target_words is required")
	}

	ctx = llmctx.WithWorkflowProvider(ctx, "outline_plan", strings.TrimSpace(in.Provider))
	chatModel, err := c.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs, err := formatOutlineMessages(ctx, in)
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

	out := &wfmodel.OutlinePlanOutput{
		Text: outMsg.Content,
		Meta: usageMeta(in.Provider, in.Model, outMsg),
	}
	return out, nil
}

func formatOutlineMessages(ctx context.Context, in *wfmodel.OutlinePlanInput) ([]*schema.Message, error) {
	tpl, err := outlinePromptRegistry.ChatTemplate(workflowprompt.PromptOutlinePlanV1)
	if err != nil {
		return nil, err
	}

	corrective := strings.TrimSpace(in.Corrective)
	if corrective != "" {
		corrective = "\nPrevious attempt was rejected: " + corrective
	}

	vars := map[string]any{
		"topic":         strings.TrimSpace(in.Topic),
		"target_words":  in.TargetWords,
		"sources_block": strings.TrimSpace(in.SourcesBlock),
		"corrective":    corrective,
	}
	return tpl.Format(ctx, vars)
}

func buildModelOptions(modelName string, temperature *float32, maxTokens *int) []model.Option {
	opts := make([]model.Option, 0, 3)
	if temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}
	if maxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*maxTokens))
	}
	if strings.TrimSpace(modelName) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(modelName)))
	}
	return opts
}

func usageMeta(provider, modelName string, msg *schema.Message) wfmodel.LLMUsageMeta {
	meta := wfmodel.LLMUsageMeta{
		Provider:    strings.TrimSpace(provider),
		Model:       strings.TrimSpace(modelName),
		GeneratedAt: time.Now(),
	}
	if msg != nil && msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		meta.PromptTokens = msg.ResponseMeta.Usage.PromptTokens
		meta.CompletionTokens = msg.ResponseMeta.Usage.CompletionTokens
	}
	return meta
}
