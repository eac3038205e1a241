package vector

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/TwigBush/sift-go/internal/embed"
	"github.com/TwigBush/sift-go/internal/retrieval"
)

const (
	payloadText = "text"
	payloadID   = "id"
)

// QdrantStore keeps document vectors in a qdrant collection. The document id
// and metadata travel in the point payload; point ids are synthetic UUIDs.
type QdrantStore struct {
	client     *qdrant.Client
	embedder   embed.Embedder
	collection string
	k          int
}

var _ Store = (*QdrantStore)(nil)

// NewQdrantStore connects to qdrant (QDRANT_HOST/QDRANT_PORT, defaulting to
// localhost:6334) and ensures the collection exists with the given vector
// size.
func NewQdrantStore(ctx context.Context, embedder embed.Embedder, collection string, vectorSize int, k int) (*QdrantStore, error) {
	host := os.Getenv("QDRANT_HOST")
	if host == "" {
		host = "localhost"
	}
	port, _ := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("qdrant_connect: %w", err)
	}

	if k <= 0 {
		k = DefaultK
	}
	s := &QdrantStore{client: client, embedder: embedder, collection: collection, k: k}
	if err := s.ensureCollection(ctx, vectorSize); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant_collection_exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(vectorSize),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("qdrant_create_collection: %w", err)
	}
	return nil
}

func (s *QdrantStore) Close() error { return s.client.Close() }

func (s *QdrantStore) Add(ctx context.Context, docs ...retrieval.Document) error {
	pts := make([]*qdrant.PointStruct, 0, len(docs))
	for _, doc := range docs {
		vec, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}

		payload := map[string]any{
			payloadText: doc.Content,
			payloadID:   doc.ID,
		}
		for k, v := range doc.Metadata {
			payload[k] = v
		}

		pts = append(pts, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         pts,
	}); err != nil {
		return fmt.Errorf("qdrant_upsert: %w", err)
	}
	return nil
}

func (s *QdrantStore) Retrieve(ctx context.Context, query string) ([]retrieval.Document, error) {
	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := uint64(s.k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(qvec...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant_query: %w", err)
	}

	out := make([]retrieval.Document, 0, len(resp))
	for _, r := range resp {
		doc := retrieval.Document{Metadata: map[string]string{}}
		for key, v := range r.Payload {
			sv, ok := stringValue(v)
			if !ok {
				continue
			}
			switch key {
			case payloadText:
				doc.Content = sv
			case payloadID:
				doc.ID = sv
			default:
				doc.Metadata[key] = sv
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

func stringValue(v *qdrant.Value) (string, bool) {
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue, true
	case *qdrant.Value_IntegerValue:
		return strconv.FormatInt(val.IntegerValue, 10), true
	case *qdrant.Value_BoolValue:
		return strconv.FormatBool(val.BoolValue), true
	case *qdrant.Value_DoubleValue:
		return strconv.FormatFloat(val.DoubleValue, 'f', -1, 64), true
	default:
		return "", false
	}
}
