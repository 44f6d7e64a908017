package analysis

import (
	"context"
	"fmt"

	"github.com/lysyi3m/alpha-scanner/app/database"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Analyzer runs the analysis prompt against OpenAI and parses the structured
// response. It backs the optional /api/analysis/run endpoint; the prompt/save
// pair works without it.
type Analyzer struct {
	client openai.Client
	model  string
}

func NewAnalyzer(apiKey, model string) *Analyzer {
	return &Analyzer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, p *database.Project) (database.Analysis, error) {
	prompt := BuildPrompt(p)

	response, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You are a crypto research analyst. Assess early-stage projects objectively using the exact response format requested."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(1500),
	})
	if err != nil {
		return database.Analysis{}, fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return database.Analysis{}, fmt.Errorf("no response from openai")
	}

	analysis := ParseResponse(response.Choices[0].Message.Content)
	if !Valid(analysis) {
		return database.Analysis{}, fmt.Errorf("analysis response missing required sections")
	}

	return analysis, nil
}
