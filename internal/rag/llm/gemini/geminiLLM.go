package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/config"
	"github.com/sugarl-sudo/slack-bot-notion-rag/internal/rag/llm"
	"github.com/sugarl-sudo/slack-bot-notion-rag/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client       *genai.Client
	modelName    string
	systemPrompt string
	maxTokens    int32
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, settings config.Settings) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, settings)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, settings config.Settings) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: settings.GoogleAPIKey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{
			client:       c,
			modelName:    settings.LLMModel,
			systemPrompt: settings.SystemPrompt,
			maxTokens:    int32(settings.AnswerMaxTokens),
		}
		logger.Info("Gemini client created", "model", settings.LLMModel)
		go closeClient(ctx, geminiClient)
	}
}

// Generate builds one prompt from the numbered context blocks, the recent
// thread history and the question, then asks Gemini for a grounded answer.
// Context blocks arrive already labelled [1]..[n] so the model can cite them.
func (c *llmClient) Generate(ctx context.Context, userQuery string, contextBlocks []string, messageHistory []string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var b strings.Builder
	if len(messageHistory) > 0 {
		b.WriteString("Conversation so far:\n")
		b.WriteString(strings.Join(messageHistory, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(contextBlocks, "\n\n"))
	userPrompt := fmt.Sprintf("%s\n\nUser Question: %s", b.String(), userQuery)

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.systemPrompt}},
		},
		MaxOutputTokens: c.maxTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(userPrompt), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err.Error())
		return "", err
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
