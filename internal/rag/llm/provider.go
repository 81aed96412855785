package llm

import "context"

type Provider interface {
	Generate(ctx context.Context, query string, contextBlocks []string, messageHistory []string) (string, error)
}
