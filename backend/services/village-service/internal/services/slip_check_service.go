package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

const slipToolName = "report_transfer_slip"

// SlipCheckService reads Thai bank transfer slips with a vision model. The
// result is advisory; the office always decides.
type SlipCheckService struct {
	client *openai.Client
}

// NewSlipCheckService returns a disabled service when apiKey is empty.
func NewSlipCheckService(apiKey string) *SlipCheckService {
	if apiKey == "" {
		return &SlipCheckService{}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &SlipCheckService{client: &c}
}

func (s *SlipCheckService) Enabled() bool { return s.client != nil }

// Check extracts amount and reference from the slip image and compares the
// amount with expectedSatang.
func (s *SlipCheckService) Check(ctx context.Context, img []byte, mimeType string, expectedSatang int64) (*models.SlipCheckResult, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: slip reader not configured", utils.ErrExternalServiceFailure)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"readable":       map[string]string{"type": "boolean"},
			"amount_baht":    map[string]string{"type": "number"},
			"reference":      map[string]string{"type": "string"},
			"receiver_name":  map[string]string{"type": "string"},
			"transferred_at": map[string]string{"type": "string"},
			"notes":          map[string]string{"type": "string"},
		},
		"required": []string{
			"readable",
			"amount_baht",
			"reference",
			"receiver_name",
			"transferred_at",
			"notes",
		},
		"additionalProperties": false,
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(`This is a Thai bank transfer or PromptPay slip.

Return JSON by calling ` + slipToolName + `(strict).
Rules:
1. readable = false if this is not a transfer slip or the amount cannot be read.
2. amount_baht is the transferred amount as a number, without currency signs.
3. reference is the transaction reference number exactly as printed, or "".
4. transferred_at is the date and time as printed, or "".
5. Put anything suspicious (edited digits, mismatched fonts) in notes.`),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img),
							Detail: "high",
						}),
					},
				},
			},
		}},
		Tools: []openai.ChatCompletionToolParam{{
			Function: shared.FunctionDefinitionParam{
				Name:        slipToolName,
				Description: openai.String("Report the fields read from a transfer slip."),
				Strict:      openai.Bool(true),
				Parameters:  schema,
			},
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: slipToolName,
				},
			},
		},
	}

	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", utils.ErrExternalServiceFailure, err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: openai returned no function call", utils.ErrExternalServiceFailure)
	}

	return parseSlipResult(resp.Choices[0].Message.ToolCalls[0].Function.Arguments, expectedSatang)
}

func parseSlipResult(arguments string, expectedSatang int64) (*models.SlipCheckResult, error) {
	var out models.SlipCheckResult
	if err := json.Unmarshal([]byte(arguments), &out); err != nil {
		return nil, fmt.Errorf("unmarshal slip result: %w", err)
	}
	out.AmountMatches = out.Readable && int64(math.Round(out.AmountBaht*utils.SatangPerBaht)) == expectedSatang
	return &out, nil
}
