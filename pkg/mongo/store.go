package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/ppp/pkg/document"
)

// Transform post-processes an array result. It receives and must return a
// []document.Document.
type Transform func(ctx context.Context, v any) (any, error)

// Store reads collections as documents.
type Store struct {
	db         *mongo.Database
	transforms []Transform
	sealed     map[string]struct{}
	logger     *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTransform appends a post-read transform. Transforms run in the order
// they were added.
func WithTransform(t Transform) StoreOption {
	return func(s *Store) {
		if t != nil {
			s.transforms = append(s.transforms, t)
		}
	}
}

// WithSealedFields names the fields whose embedded documents carry their own
// iv and are decoded as document.Document rather than plain maps.
func WithSealedFields(fields ...string) StoreOption {
	return func(s *Store) {
		for _, f := range fields {
			s.sealed[f] = struct{}{}
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore wraps db.
func NewStore(db *mongo.Database, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		sealed: make(map[string]struct{}),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns every document of collection matching filter, passed through
// the registered transforms.
func (s *Store) Find(ctx context.Context, collection string, filter any, opts ...options.Lister[options.FindOptions]) ([]document.Document, error) {
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	var raw []bson.D
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	docs := make([]document.Document, len(raw))
	for i, d := range raw {
		docs[i] = s.toDocument(d)
	}

	out, err := s.Transform(ctx, docs)
	if err != nil {
		s.logger.Error("transform failed", slog.String("collection", collection), slog.String("error", err.Error()))
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return out, nil
}

// FindOne returns the first document of collection matching filter. The
// result is not transformed.
func (s *Store) FindOne(ctx context.Context, collection string, filter any, opts ...options.Lister[options.FindOneOptions]) (document.Document, error) {
	if filter == nil {
		filter = bson.D{}
	}

	var raw bson.D
	if err := s.db.Collection(collection).FindOne(ctx, filter, opts...).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return s.toDocument(raw), nil
}

// Transform runs the registered transforms over docs. Find calls it on
// every result.
func (s *Store) Transform(ctx context.Context, docs []document.Document) ([]document.Document, error) {
	var v any = docs
	for _, t := range s.transforms {
		var err error
		if v, err = t(ctx, v); err != nil {
			return nil, err
		}
	}

	out, ok := v.([]document.Document)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedTransform, v)
	}
	return out, nil
}

func (s *Store) toDocument(d bson.D) document.Document {
	out := make(document.Document, len(d))
	for _, e := range d {
		out[e.Key] = s.convert(e.Key, e.Value)
	}
	return out
}

// convert maps BSON container types onto plain Go values. Embedded documents
// under sealed field names become document.Document.
func (s *Store) convert(key string, v any) any {
	switch val := v.(type) {
	case bson.D:
		if _, ok := s.sealed[key]; ok {
			return s.toDocument(val)
		}
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = s.convert(e.Key, e.Value)
		}
		return m
	case bson.M:
		d := make(bson.D, 0, len(val))
		for k, item := range val {
			d = append(d, bson.E{Key: k, Value: item})
		}
		return s.convert(key, d)
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = s.convert("", item)
		}
		return out
	default:
		return v
	}
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
