// Where: cli/internal/query/bedrock.go
// What: Knowledge Base retrieval and model invocation.
// Why: One-shot RAG queries against the deployed environment, for smoke checks.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// DefaultModelID is used when the caller does not pick a foundation model.
const DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// KnowledgeBaseAPI is the slice of the agent-runtime API the client needs.
type KnowledgeBaseAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// ModelAPI is the slice of the runtime API the client needs.
type ModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client runs the retrieve-then-generate pipeline.
type Client struct {
	KnowledgeBase   KnowledgeBaseAPI
	Models          ModelAPI
	KnowledgeBaseID string
	Now             func() time.Time
}

// NewClient wires a query client from a loaded AWS config.
func NewClient(cfg aws.Config, knowledgeBaseID string) *Client {
	return &Client{
		KnowledgeBase:   bedrockagentruntime.NewFromConfig(cfg),
		Models:          bedrockruntime.NewFromConfig(cfg),
		KnowledgeBaseID: knowledgeBaseID,
		Now:             time.Now,
	}
}

// RetrieveOptions tune the knowledge-base search.
type RetrieveOptions struct {
	MaxResults int
	SearchType string // HYBRID or SEMANTIC
}

// Passage is one retrieved chunk with its provenance.
type Passage struct {
	Content  string   `json:"content"`
	Score    float64  `json:"score"`
	Location Location `json:"location"`
}

// Location points back at the source document in the documents bucket.
type Location struct {
	Type   string `json:"type"`
	URI    string `json:"uri,omitempty"`
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key,omitempty"`
}

// Retrieval is the outcome of one knowledge-base query.
type Retrieval struct {
	Query            string    `json:"query"`
	Passages         []Passage `json:"results"`
	QueryTimeSeconds float64   `json:"queryTimeSeconds"`
	SearchType       string    `json:"searchType"`
}

// Retrieve queries the knowledge base for passages relevant to the query.
func (c *Client) Retrieve(ctx context.Context, query string, opts RetrieveOptions) (Retrieval, error) {
	if c.KnowledgeBaseID == "" {
		return Retrieval{}, fmt.Errorf("knowledge base id not configured")
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	searchType, err := searchTypeFor(opts.SearchType)
	if err != nil {
		return Retrieval{}, err
	}

	started := c.now()
	resp, err := c.KnowledgeBase.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(c.KnowledgeBaseID),
		RetrievalQuery:  &agenttypes.KnowledgeBaseQuery{Text: aws.String(query)},
		RetrievalConfiguration: &agenttypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &agenttypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults:    aws.Int32(int32(opts.MaxResults)),
				OverrideSearchType: searchType,
			},
		},
	})
	if err != nil {
		return Retrieval{}, fmt.Errorf("knowledge base query failed: %w", err)
	}

	passages := make([]Passage, 0, len(resp.RetrievalResults))
	for _, item := range resp.RetrievalResults {
		passage := Passage{Location: extractLocation(item.Location)}
		if item.Content != nil {
			passage.Content = aws.ToString(item.Content.Text)
		}
		if item.Score != nil {
			passage.Score = *item.Score
		}
		passages = append(passages, passage)
	}

	return Retrieval{
		Query:            query,
		Passages:         passages,
		QueryTimeSeconds: c.now().Sub(started).Seconds(),
		SearchType:       string(searchType),
	}, nil
}

// GenerateOptions tune the foundation-model call.
type GenerateOptions struct {
	ModelID     string
	Temperature float64
	MaxTokens   int
}

// Generation is the model's answer with timing metadata.
type Generation struct {
	Response              string  `json:"response"`
	ModelID               string  `json:"modelId"`
	GenerationTimeSeconds float64 `json:"generationTimeSeconds"`
	ContextUsed           int     `json:"contextUsed"`
}

// Generate asks the foundation model to answer the query from the passages.
func (c *Client) Generate(ctx context.Context, query string, contextSnippets []string, opts GenerateOptions) (Generation, error) {
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}

	prompt := buildPrompt(query, contextSnippets)
	body, err := requestBody(opts.ModelID, prompt, opts.Temperature, opts.MaxTokens)
	if err != nil {
		return Generation{}, err
	}

	started := c.now()
	resp, err := c.Models.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(opts.ModelID),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Generation{}, fmt.Errorf("model invocation failed: %w", err)
	}

	text, err := extractResponseText(opts.ModelID, resp.Body)
	if err != nil {
		return Generation{}, err
	}

	return Generation{
		Response:              strings.TrimSpace(text),
		ModelID:               opts.ModelID,
		GenerationTimeSeconds: c.now().Sub(started).Seconds(),
		ContextUsed:           len(contextSnippets),
	}, nil
}

// Answer is the combined output of the full pipeline.
type Answer struct {
	Query    string   `json:"query"`
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries per-stage timing for the answer.
type Metadata struct {
	QueryTimeSeconds      float64 `json:"kbQueryTimeSeconds"`
	GenerationTimeSeconds float64 `json:"generationTimeSeconds"`
	TotalResults          int     `json:"totalResults"`
	ModelID               string  `json:"modelId"`
	SearchType            string  `json:"searchType"`
}

// QueryAndGenerate runs retrieve then generate and formats source citations.
func (c *Client) QueryAndGenerate(ctx context.Context, query string, retrieveOpts RetrieveOptions, generateOpts GenerateOptions) (Answer, error) {
	retrieval, err := c.Retrieve(ctx, query, retrieveOpts)
	if err != nil {
		return Answer{}, err
	}

	snippets := make([]string, 0, len(retrieval.Passages))
	for _, passage := range retrieval.Passages {
		snippets = append(snippets, passage.Content)
	}

	generation, err := c.Generate(ctx, query, snippets, generateOpts)
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		Query:    query,
		Response: generation.Response,
		Sources:  formatSources(retrieval.Passages),
		Metadata: Metadata{
			QueryTimeSeconds:      retrieval.QueryTimeSeconds,
			GenerationTimeSeconds: generation.GenerationTimeSeconds,
			TotalResults:          len(retrieval.Passages),
			ModelID:               generation.ModelID,
			SearchType:            retrieval.SearchType,
		},
	}, nil
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func searchTypeFor(value string) (agenttypes.SearchType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "HYBRID":
		return agenttypes.SearchTypeHybrid, nil
	case "SEMANTIC":
		return agenttypes.SearchTypeSemantic, nil
	default:
		return "", fmt.Errorf("unsupported search type: %s", value)
	}
}

func extractLocation(location *agenttypes.RetrievalResultLocation) Location {
	if location == nil {
		return Location{}
	}
	out := Location{Type: string(location.Type)}
	if location.S3Location != nil {
		uri := aws.ToString(location.S3Location.Uri)
		out.URI = uri
		out.Bucket, out.Key = splitS3URI(uri)
	}
	return out
}

// splitS3URI breaks s3://bucket/key/path into its bucket and key parts.
func splitS3URI(uri string) (bucket, key string) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri {
		return "", ""
	}
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key
}
