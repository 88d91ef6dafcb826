// Where: cli/internal/query/bedrock_test.go
// What: Tests for the retrieve-then-generate pipeline.
// Why: Request shapes and response extraction differ per model family.
package query

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type fakeKnowledgeBase struct {
	input  *bedrockagentruntime.RetrieveInput
	output *bedrockagentruntime.RetrieveOutput
	err    error
}

func (f *fakeKnowledgeBase) Retrieve(_ context.Context, params *bedrockagentruntime.RetrieveInput, _ ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

type fakeModels struct {
	input  *bedrockruntime.InvokeModelInput
	output *bedrockruntime.InvokeModelOutput
	err    error
}

func (f *fakeModels) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func retrievalOutput() *bedrockagentruntime.RetrieveOutput {
	return &bedrockagentruntime.RetrieveOutput{
		RetrievalResults: []agenttypes.KnowledgeBaseRetrievalResult{
			{
				Content: &agenttypes.RetrievalResultContent{Text: aws.String("The capital of France is Paris.")},
				Score:   aws.Float64(0.87654),
				Location: &agenttypes.RetrievalResultLocation{
					Type: agenttypes.RetrievalResultLocationTypeS3,
					S3Location: &agenttypes.RetrievalResultS3Location{
						Uri: aws.String("s3://rag-demo-dev-docs/guides/france.pdf"),
					},
				},
			},
		},
	}
}

func TestRetrieve(t *testing.T) {
	kb := &fakeKnowledgeBase{output: retrievalOutput()}
	client := &Client{KnowledgeBase: kb, KnowledgeBaseID: "KB123", Now: func() time.Time { return time.Unix(0, 0) }}

	retrieval, err := client.Retrieve(context.Background(), "capital of France?", RetrieveOptions{MaxResults: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if aws.ToString(kb.input.KnowledgeBaseId) != "KB123" {
		t.Fatalf("unexpected knowledge base id: %v", kb.input.KnowledgeBaseId)
	}
	vector := kb.input.RetrievalConfiguration.VectorSearchConfiguration
	if aws.ToInt32(vector.NumberOfResults) != 3 {
		t.Fatalf("unexpected result count: %v", vector.NumberOfResults)
	}
	if vector.OverrideSearchType != agenttypes.SearchTypeHybrid {
		t.Fatalf("unexpected search type: %v", vector.OverrideSearchType)
	}

	if len(retrieval.Passages) != 1 {
		t.Fatalf("unexpected passages: %+v", retrieval.Passages)
	}
	passage := retrieval.Passages[0]
	if passage.Content != "The capital of France is Paris." {
		t.Fatalf("unexpected content: %s", passage.Content)
	}
	if passage.Location.Bucket != "rag-demo-dev-docs" || passage.Location.Key != "guides/france.pdf" {
		t.Fatalf("unexpected location: %+v", passage.Location)
	}
}

func TestRetrieveValidation(t *testing.T) {
	client := &Client{KnowledgeBase: &fakeKnowledgeBase{}}
	if _, err := client.Retrieve(context.Background(), "q", RetrieveOptions{}); err == nil {
		t.Fatalf("expected error without knowledge base id")
	}

	client = &Client{KnowledgeBase: &fakeKnowledgeBase{}, KnowledgeBaseID: "KB123"}
	if _, err := client.Retrieve(context.Background(), "q", RetrieveOptions{SearchType: "KEYWORD"}); err == nil {
		t.Fatalf("expected error for unsupported search type")
	}
}

func TestGenerateClaudeFormat(t *testing.T) {
	models := &fakeModels{output: &bedrockruntime.InvokeModelOutput{
		Body: []byte(`{"content":[{"text":" Paris is the capital. "}]}`),
	}}
	client := &Client{Models: models}

	generation, err := client.Generate(context.Background(), "capital?", []string{"France facts"}, GenerateOptions{Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if generation.Response != "Paris is the capital." {
		t.Fatalf("unexpected response: %q", generation.Response)
	}
	if aws.ToString(models.input.ModelId) != DefaultModelID {
		t.Fatalf("unexpected model id: %v", models.input.ModelId)
	}

	var body map[string]any
	if err := json.Unmarshal(models.input.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body["anthropic_version"] != "bedrock-2023-05-31" {
		t.Fatalf("unexpected request body: %v", body)
	}
	messages := body["messages"].([]any)
	content := messages[0].(map[string]any)["content"].(string)
	if !strings.Contains(content, "Context:\nFrance facts") {
		t.Fatalf("prompt missing context: %q", content)
	}
	if !strings.Contains(content, "Question: capital?") {
		t.Fatalf("prompt missing question: %q", content)
	}
}

func TestGenerateTitanFormat(t *testing.T) {
	models := &fakeModels{output: &bedrockruntime.InvokeModelOutput{
		Body: []byte(`{"results":[{"outputText":"Paris."}]}`),
	}}
	client := &Client{Models: models}

	generation, err := client.Generate(context.Background(), "capital?", nil, GenerateOptions{ModelID: "amazon.titan-text-express-v1", MaxTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generation.Response != "Paris." {
		t.Fatalf("unexpected response: %q", generation.Response)
	}

	var body map[string]any
	if err := json.Unmarshal(models.input.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if _, ok := body["inputText"]; !ok {
		t.Fatalf("expected titan request body: %v", body)
	}
	config := body["textGenerationConfig"].(map[string]any)
	if config["maxTokenCount"] != float64(100) || config["topP"] != 0.9 {
		t.Fatalf("unexpected titan config: %v", config)
	}
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := buildPrompt("capital?", nil)
	if !strings.Contains(prompt, "I don't have specific context") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

func TestBuildPromptLimitsContext(t *testing.T) {
	prompt := buildPrompt("q", []string{"snippet-one", "snippet-two", "snippet-three", "snippet-four"})
	if !strings.Contains(prompt, "snippet-three") {
		t.Fatalf("expected third snippet present: %q", prompt)
	}
	if strings.Contains(prompt, "snippet-four") {
		t.Fatalf("expected context capped at %d snippets", maxContextSnippets)
	}
}

func TestQueryAndGenerate(t *testing.T) {
	kb := &fakeKnowledgeBase{output: retrievalOutput()}
	models := &fakeModels{output: &bedrockruntime.InvokeModelOutput{
		Body: []byte(`{"content":[{"text":"Paris."}]}`),
	}}
	client := &Client{KnowledgeBase: kb, Models: models, KnowledgeBaseID: "KB123"}

	answer, err := client.QueryAndGenerate(context.Background(), "capital of France?", RetrieveOptions{}, GenerateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer.Response != "Paris." {
		t.Fatalf("unexpected response: %q", answer.Response)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("unexpected sources: %+v", answer.Sources)
	}
	source := answer.Sources[0]
	if source.DocumentName != "france.pdf" {
		t.Fatalf("unexpected document name: %s", source.DocumentName)
	}
	if source.Score != 0.877 {
		t.Fatalf("expected score rounded to 3 places, got %v", source.Score)
	}
	if answer.Metadata.TotalResults != 1 || answer.Metadata.ModelID != DefaultModelID {
		t.Fatalf("unexpected metadata: %+v", answer.Metadata)
	}
}

func TestExtractResponseTextErrors(t *testing.T) {
	if _, err := extractResponseText(DefaultModelID, []byte(`{"content":[]}`)); err == nil {
		t.Fatalf("expected error for empty content")
	}
	if _, err := extractResponseText("amazon.titan-text-express-v1", []byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestSplitS3URI(t *testing.T) {
	bucket, key := splitS3URI("s3://bucket/a/b/c.txt")
	if bucket != "bucket" || key != "a/b/c.txt" {
		t.Fatalf("unexpected parts: %s %s", bucket, key)
	}
	bucket, key = splitS3URI("https://example.com/x")
	if bucket != "" || key != "" {
		t.Fatalf("expected empty parts for non-s3 uri")
	}
}
