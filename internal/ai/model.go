package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Model is a text-only language model.
type Model interface {
	// Generate returns the whole reply in one call.
	Generate(ctx context.Context, system, user string) (string, error)
	// Stream hands each fragment to onChunk as it arrives and returns the full reply.
	// An error from onChunk stops the stream.
	Stream(ctx context.Context, system, user string, onChunk func(string) error) (string, error)
}

// GeminiModel talks to Google's Gemini API.
type GeminiModel struct {
	client *genai.Client
	name   string
}

func NewGeminiModel(ctx context.Context, apiKey, name string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiModel{client: client, name: name}, nil
}

func (g *GeminiModel) Close() error { return g.client.Close() }

func (g *GeminiModel) model(system string) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.name)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	return m
}

func (g *GeminiModel) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := g.model(system).GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (g *GeminiModel) Stream(ctx context.Context, system, user string, onChunk func(string) error) (string, error) {
	iter := g.model(system).GenerateContentStream(ctx, genai.Text(user))
	var full strings.Builder
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return full.String(), err
		}
		chunk := responseText(resp)
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return full.String(), err
		}
	}
	return full.String(), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
