// Where: cli/internal/query/prompt.go
// What: Prompt assembly and per-model request/response formats.
// Why: Each foundation model family speaks its own invoke schema.
package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxContextSnippets limits how many retrieved passages go into the prompt.
const maxContextSnippets = 3

func buildPrompt(query string, contextSnippets []string) string {
	if len(contextSnippets) > maxContextSnippets {
		contextSnippets = contextSnippets[:maxContextSnippets]
	}
	contextText := strings.Join(contextSnippets, "\n\n")

	if contextText != "" {
		return fmt.Sprintf(`Based on the following context, please answer the question. If the context doesn't contain enough information to answer the question, please say so and provide what information you can.

Context:
%s

Question: %s

Answer:`, contextText, query)
	}

	return fmt.Sprintf(`I don't have specific context to answer this question, but I'll provide what general information I can.

Question: %s

Answer:`, query)
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type titanRequest struct {
	InputText string      `json:"inputText"`
	Config    titanConfig `json:"textGenerationConfig"`
}

type titanConfig struct {
	MaxTokenCount int     `json:"maxTokenCount"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"topP"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// requestBody renders the invoke payload for the model family. Unknown
// families use the Claude messages format, which is the service default here.
func requestBody(modelID, prompt string, temperature float64, maxTokens int) ([]byte, error) {
	switch {
	case strings.Contains(modelID, "amazon.titan"):
		return json.Marshal(titanRequest{
			InputText: prompt,
			Config: titanConfig{
				MaxTokenCount: maxTokens,
				Temperature:   temperature,
				TopP:          0.9,
			},
		})
	default:
		return json.Marshal(claudeRequest{
			AnthropicVersion: "bedrock-2023-05-31",
			MaxTokens:        maxTokens,
			Temperature:      temperature,
			Messages:         []claudeMessage{{Role: "user", Content: prompt}},
		})
	}
}

func extractResponseText(modelID string, body []byte) (string, error) {
	switch {
	case strings.Contains(modelID, "amazon.titan"):
		var resp titanResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode titan response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", fmt.Errorf("titan response contained no results")
		}
		return resp.Results[0].OutputText, nil
	default:
		var resp claudeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode model response: %w", err)
		}
		if len(resp.Content) == 0 {
			return "", fmt.Errorf("model response contained no content")
		}
		return resp.Content[0].Text, nil
	}
}

// Source is a citation the operator can follow back to the document store.
type Source struct {
	Index          int     `json:"index"`
	ContentPreview string  `json:"contentPreview"`
	Score          float64 `json:"score"`
	Location       Location `json:"location"`
	DocumentName   string  `json:"documentName,omitempty"`
}

const previewLength = 200

func formatSources(passages []Passage) []Source {
	sources := make([]Source, 0, len(passages))
	for i, passage := range passages {
		source := Source{
			Index:          i + 1,
			ContentPreview: preview(passage.Content),
			Score:          roundScore(passage.Score),
			Location:       passage.Location,
		}
		if passage.Location.Key != "" {
			parts := strings.Split(passage.Location.Key, "/")
			source.DocumentName = parts[len(parts)-1]
		}
		sources = append(sources, source)
	}
	return sources
}

func preview(content string) string {
	if len(content) <= previewLength {
		return content
	}
	return content[:previewLength] + "..."
}

func roundScore(score float64) float64 {
	return float64(int(score*1000+0.5)) / 1000
}
