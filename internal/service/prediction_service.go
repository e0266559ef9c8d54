package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/events"
	"github.com/DiogoBrazil/medimage-api/internal/inference"
	"github.com/DiogoBrazil/medimage-api/internal/observability"
	"github.com/DiogoBrazil/medimage-api/pkg/util"
)

// modelClasses lists the labels each diagnostic model can produce.
var modelClasses = map[domain.ModelKind][]string{
	domain.ModelRespiratory:  {"Pneumonia Viral", "Normal", "Covid-19", "Pneumonia Bacteriana"},
	domain.ModelTuberculosis: {"negative", "positive"},
	domain.ModelOsteoporosis: {"Normal", "Osteopenia", "Osteoporosis"},
	domain.ModelBreast:       {"nódulo encontrado", "nódulo não encontrado"},
}

// PredictionResult is what a professional receives for a submitted image.
type PredictionResult struct {
	Model      domain.ModelKind `json:"model"`
	Class      string           `json:"class"`
	Confidence float64          `json:"confidence"`
	Boxes      []inference.Box  `json:"boxes,omitempty"`
	FromCache  bool             `json:"from_cache"`
}

// PredictionService runs model inference for professionals, caching results
// per image digest so re-submissions of the same study are served from Redis.
type PredictionService struct {
	client     inference.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewPredictionService creates the service. The cache client may be nil, in
// which case every request hits the inference backend.
func NewPredictionService(
	client inference.Client,
	cache *redis.Client,
	cacheTTLMinutes int,
	dispatcher events.Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PredictionService {
	ttl := time.Duration(cacheTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PredictionService{
		client:     client,
		cache:      cache,
		cacheTTL:   ttl,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// ModelClasses returns the label set for a model.
func ModelClasses(model domain.ModelKind) []string {
	return modelClasses[model]
}

// Predict validates the model name and serves a classification, preferring the
// cache over the inference backend.
func (s *PredictionService) Predict(ctx context.Context, p auth.Principal, model domain.ModelKind, imageBase64 string) (*PredictionResult, error) {
	if !model.Valid() {
		names := make([]string, len(domain.ModelKinds))
		for i, kind := range domain.ModelKinds {
			names[i] = string(kind)
		}
		return nil, util.NewValidationError("Invalid model. Use one of: " + strings.Join(names, ", "))
	}
	if strings.TrimSpace(imageBase64) == "" {
		return nil, util.NewValidationError("Image is required")
	}

	key := s.cacheKey(model, imageBase64)
	if cached := s.lookupCache(ctx, key); cached != nil {
		cached.FromCache = true
		s.recordPrediction(ctx, p, cached)
		return cached, nil
	}

	raw, err := s.client.Predict(ctx, model, imageBase64)
	if err != nil {
		s.logger.Error("inference call failed", zap.String("model", string(model)), zap.Error(err))
		return nil, util.NewDomainError("Prediction service is unavailable", 503)
	}

	result := &PredictionResult{
		Model:      model,
		Class:      raw.Class,
		Confidence: raw.Confidence,
		Boxes:      raw.Boxes,
	}
	s.storeCache(ctx, key, result)
	s.recordPrediction(ctx, p, result)
	return result, nil
}

func (s *PredictionService) cacheKey(model domain.ModelKind, imageBase64 string) string {
	digest := sha256.Sum256([]byte(imageBase64))
	return fmt.Sprintf("prediction:%s:%s", model, hex.EncodeToString(digest[:]))
}

func (s *PredictionService) lookupCache(ctx context.Context, key string) *PredictionResult {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var result PredictionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil
	}
	return &result
}

func (s *PredictionService) storeCache(ctx context.Context, key string, result *PredictionResult) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache prediction", zap.Error(err))
	}
}

func (s *PredictionService) recordPrediction(ctx context.Context, p auth.Principal, result *PredictionResult) {
	if s.metrics != nil {
		s.metrics.RecordPrediction(string(result.Model), result.Class)
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPredictionServed,
			SubjectID: p.ID,
			Actor:     events.Actor{UserID: p.ID, Profile: p.Role, AdminID: p.TenantAdminID},
			Timestamp: time.Now(),
			Payload: events.PredictionPayload{
				Model:     result.Model,
				Class:     result.Class,
				FromCache: result.FromCache,
			},
		})
	}
}
