// Package vectorstore is the sole owner of Qdrant operations, standing in
// for the (p_user_id, query_embedding, match_threshold, match_count) vector
// search stored procedure described in the pipeline's external interfaces.
package vectorstore

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Match is one retrieved chunk: the Go-native analogue of the stored
// procedure's {content, similarity} row.
type Match struct {
	ID         string
	Content    string
	DocumentID string
	Similarity float32
}

// Record is a single embedding to persist, one per document chunk.
type Record struct {
	ID         string
	Embedding  []float32
	UserID     string
	DocumentID string
	Content    string
}

type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	return err
}

// EnsureCollection creates the collection with a cosine-distance vector
// config sized to dims if it doesn't already exist.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("vectorstore: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert stores one point per chunk, tagged with the owning user so Search
// can scope results to p_user_id.
func (s *Store) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Embedding}},
			},
			Payload: map[string]*pb.Value{
				"content":     {Kind: &pb.Value_StringValue{StringValue: r.Content}},
				"user_id":     {Kind: &pb.Value_StringValue{StringValue: r.UserID}},
				"document_id": {Kind: &pb.Value_StringValue{StringValue: r.DocumentID}},
			},
		}
	}
	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{CollectionName: s.collection, Wait: &wait, Points: points})
	if err != nil {
		return fmt.Errorf("vectorstore: upsert %d points: %w", len(records), err)
	}
	return nil
}

func (s *Store) DeleteByDocumentID(ctx context.Context, documentID string) error {
	wait := true
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{Must: []*pb.Condition{fieldMatch("document_id", documentID)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: delete by document_id %s: %w", documentID, err)
	}
	return nil
}

// Search runs the (p_user_id, query_embedding, match_threshold, match_count)
// contract: only the caller's own chunks are visible, and results are
// ordered by descending similarity, clipped at matchThreshold/matchCount.
func (s *Store) Search(ctx context.Context, userID string, embedding []float32, matchThreshold float32, matchCount int) ([]Match, error) {
	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(matchCount),
		ScoreThreshold: &matchThreshold,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		Filter:         &pb.Filter{Must: []*pb.Condition{fieldMatch("user_id", userID)}},
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}

	matches := make([]Match, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		payload := r.GetPayload()
		matches[i] = Match{
			ID:         r.GetId().GetUuid(),
			Similarity: r.GetScore(),
			Content:    payload["content"].GetStringValue(),
			DocumentID: payload["document_id"].GetStringValue(),
		}
	}
	return matches, nil
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{Key: key, Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}}},
		},
	}
}
