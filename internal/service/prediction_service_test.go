package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DiogoBrazil/medimage-api/internal/auth"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
	"github.com/DiogoBrazil/medimage-api/internal/inference"
)

type fakeInferenceClient struct {
	result *inference.Result
	err    error
	calls  int
}

func (c *fakeInferenceClient) Predict(_ context.Context, _ domain.ModelKind, _ string) (*inference.Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func newTestPredictionService(client inference.Client) *PredictionService {
	return NewPredictionService(client, nil, 60, nil, nil, zap.NewNop())
}

func TestPredictRejectsUnknownModel(t *testing.T) {
	svc := newTestPredictionService(&fakeInferenceClient{})
	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}

	_, err := svc.Predict(context.Background(), professional, domain.ModelKind("dermatology"), "aW1hZ2U=")
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestPredictRequiresImage(t *testing.T) {
	svc := newTestPredictionService(&fakeInferenceClient{})
	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}

	_, err := svc.Predict(context.Background(), professional, domain.ModelRespiratory, "   ")
	domainErr := domainStatus(t, err)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "Image is required", domainErr.Message)
}

func TestPredictReturnsBackendResult(t *testing.T) {
	client := &fakeInferenceClient{result: &inference.Result{Class: "Covid-19", Confidence: 0.93}}
	svc := newTestPredictionService(client)
	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}

	result, err := svc.Predict(context.Background(), professional, domain.ModelRespiratory, "aW1hZ2U=")
	require.NoError(t, err)
	assert.Equal(t, domain.ModelRespiratory, result.Model)
	assert.Equal(t, "Covid-19", result.Class)
	assert.InDelta(t, 0.93, result.Confidence, 0.001)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, client.calls)
}

func TestPredictBackendFailure(t *testing.T) {
	client := &fakeInferenceClient{err: errors.New("connection refused")}
	svc := newTestPredictionService(client)
	professional := auth.Principal{ID: "pro-1", Role: domain.RoleProfessional, TenantAdminID: "adm-1"}

	_, err := svc.Predict(context.Background(), professional, domain.ModelTuberculosis, "aW1hZ2U=")
	domainErr := domainStatus(t, err)
	assert.Equal(t, 503, domainErr.HTTPStatus)
	assert.Equal(t, "Prediction service is unavailable", domainErr.Message)
}

func TestModelClasses(t *testing.T) {
	assert.Equal(t, []string{"Pneumonia Viral", "Normal", "Covid-19", "Pneumonia Bacteriana"}, ModelClasses(domain.ModelRespiratory))
	assert.Equal(t, []string{"negative", "positive"}, ModelClasses(domain.ModelTuberculosis))
	assert.Nil(t, ModelClasses(domain.ModelKind("dermatology")))
}
