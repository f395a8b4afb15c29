package llmquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/supplysync/supplysync-backend/internal/catalog"
	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"github.com/supplysync/supplysync-backend/pkg/metrics"
	mongoclient "github.com/supplysync/supplysync-backend/pkg/mongo"
	"go.mongodb.org/mongo-driver/bson"
)

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type storeExecutor interface {
	FindProducts(ctx context.Context, filter bson.D) ([]catalog.Product, error)
	FindRaw(ctx context.Context, collection string, filter bson.D) ([]bson.D, error)
}

// QueryResult is the response envelope for a processed question.
type QueryResult struct {
	Question       string    `json:"question"`
	GeneratedQuery string    `json:"generatedQuery"`
	Data           any       `json:"data"`
	ProcessedAt    time.Time `json:"processedAt"`
}

// Service exposes the natural language query bridge.
type Service interface {
	ProcessQuery(ctx context.Context, question string) (*QueryResult, error)
}

type service struct {
	gen     generator
	store   storeExecutor
	bridge  *metrics.BridgeMetrics
	logg    *logger.Logger
	timeout time.Duration
}

// NewService builds the query bridge service.
func NewService(gen generator, store storeExecutor, bridge *metrics.BridgeMetrics, logg *logger.Logger, timeout time.Duration) (Service, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator required")
	}
	if store == nil {
		return nil, fmt.Errorf("store executor required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	return &service{
		gen:     gen,
		store:   store,
		bridge:  bridge,
		logg:    logg,
		timeout: timeout,
	}, nil
}

// translate forwards the question to the generation service and extracts
// the collection name and filter body from the response.
func (s *service) translate(ctx context.Context, question string) (collection, filter, cleaned string, err error) {
	raw, err := s.gen.Generate(ctx, BuildPrompt(question))
	if err != nil {
		return "", "", "", err
	}

	cleaned = CleanGeneration(raw)
	if cleaned == "" {
		return "", "", "", pkgerrors.New(pkgerrors.CodeEmptyGeneration, "no valid query generated")
	}

	collection, filter, ok := ParseQuery(cleaned)
	if !ok {
		return "", "", "", pkgerrors.New(pkgerrors.CodeUnparseableQuery, "generated text is not a find query")
	}
	return collection, filter, cleaned, nil
}

// execute parses the filter body and runs it against the named collection.
func (s *service) execute(ctx context.Context, collection, filter string) (any, error) {
	var filterDoc bson.D
	if err := bson.UnmarshalExtJSON([]byte(NormalizeFilterJSON(filter)), false, &filterDoc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedFilter, err, "parse generated filter")
	}

	if collection == mongoclient.CollectionProducts {
		products, err := s.store.FindProducts(ctx, filterDoc)
		if err != nil {
			return nil, err
		}
		return catalog.ProductsToDTOs(products), nil
	}

	docs, err := s.store.FindRaw(ctx, collection, filterDoc)
	if err != nil {
		return nil, err
	}
	return NormalizeDocuments(docs), nil
}

func (s *service) ProcessQuery(ctx context.Context, question string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.gen.Model()
	ctx = s.logg.WithField(ctx, "model", model)
	start := time.Now()

	collection, filter, cleaned, err := s.translate(ctx, question)
	if err != nil {
		return nil, s.fail(ctx, err, "query translation failed")
	}

	ctx = s.logg.WithCollection(ctx, collection)
	data, err := s.execute(ctx, collection, filter)
	if err != nil {
		return nil, s.fail(ctx, err, "query execution failed")
	}

	s.bridge.ObserveDuration(model, time.Since(start))
	s.bridge.IncSuccess(model)

	return &QueryResult{
		Question:       question,
		GeneratedQuery: cleaned,
		Data:           data,
		ProcessedAt:    time.Now().UTC(),
	}, nil
}

// fail classifies an error from either stage: already-coded failures pass
// through, deadline expiry becomes a timeout, and everything else is an
// internal failure whose cause is logged but never surfaced verbatim.
func (s *service) fail(ctx context.Context, err error, stage string) error {
	model := s.gen.Model()

	if typed := pkgerrors.As(err); typed != nil {
		s.bridge.IncFailure(model, string(typed.Code()))
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		s.bridge.IncFailure(model, string(pkgerrors.CodeTimeout))
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, stage)
	}

	s.logg.Error(ctx, stage, err)
	s.bridge.IncFailure(model, string(pkgerrors.CodeInternal))
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, stage)
}
