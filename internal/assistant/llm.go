package assistant

import (
	"context"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Streamer is the port to the remote conversational API. Stream opens a
// token stream for the given history; Generate is the single-shot variant.
type Streamer interface {
	Stream(ctx context.Context, p *Persona, history []Message) (ChunkReader, error)
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChunkReader yields text deltas until io.EOF.
type ChunkReader interface {
	Recv() (string, error)
	Close() error
}

// Transcriber converts a recorded utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
}

// OpenAIClient adapts the go-openai client to the Streamer and Transcriber
// ports.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	sttModel string
}

func NewOpenAIClient(apiKey, model, sttModel string) *OpenAIClient {
	return &OpenAIClient{
		client:   openai.NewClient(apiKey),
		model:    model,
		sttModel: sttModel,
	}
}

func (o *OpenAIClient) Stream(ctx context.Context, p *Persona, history []Message) (ChunkReader, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		Messages:    convertMessages(p.System, history),
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return &openAIChunks{stream: stream}, nil
}

func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (o *OpenAIClient) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	tr, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.sttModel,
		Reader:   audio,
		FilePath: filename,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tr.Text), nil
}

func convertMessages(system string, history []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}
	return out
}

type openAIChunks struct {
	stream *openai.ChatCompletionStream
}

func (c *openAIChunks) Recv() (string, error) {
	for {
		resp, err := c.stream.Recv()
		if err != nil {
			// io.EOF marks normal stream exhaustion
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		chunk := resp.Choices[0].Delta.Content
		if chunk == "" {
			continue
		}
		return chunk, nil
	}
}

func (c *openAIChunks) Close() error { return c.stream.Close() }
