// Where: cli/internal/config/config.go
// What: Runtime configuration for the RAG demo deployment.
// Why: One merged view over environment variables and the parameter store.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied when neither the environment nor the parameter store
// provides a value.
const (
	DefaultRegion          = "us-east-1"
	DefaultEnvironment     = "dev"
	DefaultIndexName       = "rag-documents"
	DefaultEmbeddingModel  = "amazon.titan-embed-text-v2:0"
	DefaultVectorDimension = 1024
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
)

// Config holds everything the commands need to reach the deployed environment.
type Config struct {
	Region      string `json:"region"`
	Environment string `json:"environment"`

	KnowledgeBaseID    string `json:"knowledgeBaseId"`
	CollectionEndpoint string `json:"collectionEndpoint"`
	DocumentsBucket    string `json:"documentsBucket"`

	IndexName       string `json:"indexName"`
	VectorDimension int    `json:"vectorDimensions"`
	EmbeddingModel  string `json:"embeddingModel"`
	ChunkSize       int    `json:"chunkSize"`
	ChunkOverlap    int    `json:"chunkOverlap"`
}

// FromEnv builds a Config from environment variables with defaults applied.
func FromEnv() Config {
	return Config{
		Region:             envOr("REGION", envOr("AWS_REGION", DefaultRegion)),
		Environment:        envOr("ENVIRONMENT", DefaultEnvironment),
		KnowledgeBaseID:    os.Getenv("KNOWLEDGE_BASE_ID"),
		CollectionEndpoint: os.Getenv("COLLECTION_ENDPOINT"),
		DocumentsBucket:    os.Getenv("DOCUMENTS_BUCKET"),
		IndexName:          envOr("INDEX_NAME", DefaultIndexName),
		VectorDimension:    envIntOr("VECTOR_DIMENSIONS", DefaultVectorDimension),
		EmbeddingModel:     envOr("EMBEDDING_MODEL", DefaultEmbeddingModel),
		ChunkSize:          envIntOr("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:       envIntOr("CHUNK_OVERLAP", DefaultChunkOverlap),
	}
}

// Merge overlays non-zero fields of other onto c and returns the result.
// Parameter-store values win over environment defaults.
func (c Config) Merge(other Config) Config {
	merged := c
	if other.Region != "" {
		merged.Region = other.Region
	}
	if other.Environment != "" {
		merged.Environment = other.Environment
	}
	if other.KnowledgeBaseID != "" {
		merged.KnowledgeBaseID = other.KnowledgeBaseID
	}
	if other.CollectionEndpoint != "" {
		merged.CollectionEndpoint = other.CollectionEndpoint
	}
	if other.DocumentsBucket != "" {
		merged.DocumentsBucket = other.DocumentsBucket
	}
	if other.IndexName != "" {
		merged.IndexName = other.IndexName
	}
	if other.VectorDimension != 0 {
		merged.VectorDimension = other.VectorDimension
	}
	if other.EmbeddingModel != "" {
		merged.EmbeddingModel = other.EmbeddingModel
	}
	if other.ChunkSize != 0 {
		merged.ChunkSize = other.ChunkSize
	}
	if other.ChunkOverlap != 0 {
		merged.ChunkOverlap = other.ChunkOverlap
	}
	return merged
}

// Validate reports the missing required fields, if any.
func (c Config) Validate() error {
	var missing []string
	if c.Region == "" {
		missing = append(missing, "region")
	}
	if c.Environment == "" {
		missing = append(missing, "environment")
	}
	if c.KnowledgeBaseID == "" {
		missing = append(missing, "knowledgeBaseId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ParseJSON decodes a parameter-store JSON document into a Config overlay.
func ParseJSON(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config document: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
