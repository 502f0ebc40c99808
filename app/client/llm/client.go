// Package llm is the fallback generator used when no deterministic tool
// action can be selected. It hands the model the conversation so far plus
// the task tool surface and executes whatever tool calls come back.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskchat/app/config"
	"taskchat/app/service/conversation"
	"taskchat/app/service/tasks"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

const maxGenerateDuration = 30 * time.Second

// Reply is the fallback output, reported verbatim to the user.
type Reply struct {
	Response  string
	ToolCalls []conversation.ToolCall
}

type Client struct {
	client   *openai.Client
	model    string
	executor tasks.Executor
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		client:   createClient(cfg.OpenAI.Fallback),
		model:    cfg.OpenAI.Fallback.Model,
		executor: do.MustInvoke[*tasks.Service](di),
	}, nil
}

func NewWithExecutor(client *openai.Client, model string, executor tasks.Executor) *Client {
	return &Client{
		client:   client,
		model:    model,
		executor: executor,
	}
}

func (c *Client) Generate(ctx context.Context, history []conversation.Turn, message string) (*Reply, error) {
	messages := buildMessages(history, message)

	tools := make([]openai.Tool, 0)
	for _, spec := range c.executor.Specs() {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.InputSchema,
			},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:               c.model,
			Messages:            messages,
			Tools:               tools,
			MaxCompletionTokens: 1000,
			Temperature:         0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no chat completion found")
	}

	choice := aiResponse.Choices[0]

	toolCalls := make([]conversation.ToolCall, 0, len(choice.Message.ToolCalls))
	for _, call := range choice.Message.ToolCalls {
		var args map[string]any
		if err = json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			args = map[string]any{}
		}

		result := c.executor.Execute(ctx, call.Function.Name, args)

		toolCalls = append(toolCalls, conversation.ToolCall{
			ToolName:   call.Function.Name,
			Parameters: args,
			Result:     result,
		})
	}

	return &Reply{
		Response:  strings.TrimSpace(choice.Message.Content),
		ToolCalls: toolCalls,
	}, nil
}

func buildMessages(history []conversation.Turn, message string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)

	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})

		for _, call := range turn.ToolCalls {
			if call.Result == nil {
				continue
			}

			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleTool,
				Content: fmt.Sprint(call.Result),
			})
		}
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}

func createClient(cfg config.ModelConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: maxGenerateDuration,
	}

	return openai.NewClientWithConfig(clientConfig)
}
