// internal/summary/generator.go
package summary

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompletionStreamer produces a streamed completion for a prompt,
// invoking emit for every text fragment as it arrives, in arrival
// order. Implementations return emit's error unchanged when it fails.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, prompt string, emit func(chunk string) error) error
}

// Generator builds the report prompt from aggregated activity and
// relays the streamed completion to the caller.
type Generator struct {
	streamer CompletionStreamer
	logger   *slog.Logger
}

// NewGenerator creates a new Generator instance.
func NewGenerator(streamer CompletionStreamer, logger *slog.Logger) *Generator {
	return &Generator{
		streamer: streamer,
		logger:   logger,
	}
}

// Stream generates the summary for the given activity, forwarding each
// incremental fragment to emit as soon as the model produces it. It
// returns only after the model signals completion or the stream fails.
func (g *Generator) Stream(ctx context.Context, req Request, emit func(chunk string) error) error {
	prompt := BuildPrompt(req)
	g.logger.Debug("Requesting streamed summary",
		"commits", len(req.Commits),
		"issues", len(req.Issues),
		"pull_requests", len(req.PullRequests))
	return g.streamer.StreamCompletion(ctx, prompt, emit)
}

// OpenAIStreamer is the CompletionStreamer backed by the OpenAI chat
// completions API in streaming mode.
type OpenAIStreamer struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIStreamer creates a streamer for the given API key and model.
// baseURL overrides the API endpoint (a proxy or a test server); pass
// "" for the default.
func NewOpenAIStreamer(apiKey, baseURL, model string, logger *slog.Logger) *OpenAIStreamer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIStreamer{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// StreamCompletion requests the completion with streaming enabled and
// forwards every delta fragment to emit. The response is never buffered
// whole; cancellation happens through ctx only.
func (s *OpenAIStreamer) StreamCompletion(ctx context.Context, prompt string, emit func(chunk string) error) error {
	stream := s.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful assistant"),
			openai.UserMessage(prompt),
		},
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := emit(delta); err != nil {
			return err
		}
	}

	return stream.Err()
}
