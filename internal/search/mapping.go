// Where: cli/internal/search/mapping.go
// What: Index mapping document for the vector collection.
// Why: The knowledge base expects this exact field layout; keep it in one place.
package search

import (
	"encoding/json"
	"fmt"

	"github.com/ragkit/rag-demo/cli/internal/provision"
)

// Field names the knowledge base is configured with. Changing them breaks
// ingestion, so they are fixed rather than configurable.
const (
	VectorField   = "vector"
	TextField     = "text"
	MetadataField = "metadata"
)

type mappingDocument struct {
	Settings indexSettings `json:"settings"`
	Mappings indexMappings `json:"mappings"`
}

type indexSettings struct {
	Index indexOptions `json:"index"`
}

type indexOptions struct {
	KNN      bool `json:"knn"`
	Shards   int  `json:"number_of_shards"`
	Replicas int  `json:"number_of_replicas"`
}

type indexMappings struct {
	Properties map[string]fieldMapping `json:"properties"`
}

type fieldMapping struct {
	Type      string        `json:"type"`
	Dimension int           `json:"dimension,omitempty"`
	Method    *vectorMethod `json:"method,omitempty"`
	Index     *bool         `json:"index,omitempty"`
}

type vectorMethod struct {
	Name       string           `json:"name"`
	Engine     string           `json:"engine"`
	SpaceType  string           `json:"space_type"`
	Parameters methodParameters `json:"parameters"`
}

type methodParameters struct {
	EFConstruction int `json:"ef_construction"`
	M              int `json:"m"`
}

// MappingBody renders the JSON creation body for the spec: an HNSW vector
// field plus the fixed text and metadata fields.
func MappingBody(spec provision.IndexSpec) ([]byte, error) {
	spaceType, err := spaceTypeFor(spec.Metric)
	if err != nil {
		return nil, err
	}

	noIndex := false
	doc := mappingDocument{
		Settings: indexSettings{
			Index: indexOptions{
				KNN:      true,
				Shards:   spec.ShardCount,
				Replicas: spec.ReplicaCount,
			},
		},
		Mappings: indexMappings{
			Properties: map[string]fieldMapping{
				VectorField: {
					Type:      "knn_vector",
					Dimension: spec.VectorDimension,
					Method: &vectorMethod{
						Name:       "hnsw",
						Engine:     "faiss",
						SpaceType:  spaceType,
						Parameters: methodParameters{EFConstruction: 512, M: 16},
					},
				},
				TextField:     {Type: "text"},
				MetadataField: {Type: "text", Index: &noIndex},
			},
		},
	}
	return json.Marshal(doc)
}

func spaceTypeFor(metric provision.Metric) (string, error) {
	switch metric {
	case provision.MetricCosine, "":
		return "cosinesimil", nil
	default:
		return "", fmt.Errorf("unsupported similarity metric: %s", metric)
	}
}
