package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"aerolabel/internal/review/repository"
	"aerolabel/pkg/config"
	apperrors "aerolabel/pkg/errors"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/model"
)

type mockFileStore struct {
	mu          sync.Mutex
	relocated   map[string]string
	excluded    []string
	relocateErr error
	excludeErr  error
}

func (m *mockFileStore) RelocateToAnnotated(ctx context.Context, resourceID, targetName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.relocateErr != nil {
		return m.relocateErr
	}
	if m.relocated == nil {
		m.relocated = make(map[string]string)
	}
	m.relocated[resourceID] = targetName
	return nil
}

func (m *mockFileStore) MarkPermanentlyExcluded(ctx context.Context, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.excludeErr != nil {
		return m.excludeErr
	}
	m.excluded = append(m.excluded, resourceID)
	return nil
}

func (m *mockFileStore) IsExcluded(ctx context.Context, resourceID string) (bool, error) {
	return false, nil
}

func (m *mockFileStore) ImageExists(ctx context.Context, resourceID string) (bool, error) {
	return true, nil
}

func (m *mockFileStore) ListImages(ctx context.Context) ([]string, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.DecisionEvent
	err    error
}

func (p *recordingPublisher) PublishDecision(ctx context.Context, event model.DecisionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	svc         ReviewService
	predictions *repository.MemoryPredictionRepository
	labels      *repository.MemoryLabelRepository
	files       *mockFileStore
	publisher   *recordingPublisher
}

func newFixture(t *testing.T, preds ...*model.AIPrediction) *fixture {
	t.Helper()

	cfg := &config.Config{
		HighConfidenceThreshold: 0.95,
		BulkApproveConcurrency:  4,
		BulkApproveMaxItems:     10,
		RequestTimeout:          5 * time.Second,
		Log:                     logger.NewDiscard(),
	}

	f := &fixture{
		predictions: repository.NewMemoryPredictionRepository(),
		labels:      repository.NewMemoryLabelRepository(),
		files:       &mockFileStore{},
		publisher:   &recordingPublisher{},
	}
	for _, p := range preds {
		_, err := f.predictions.Insert(context.Background(), p)
		require.NoError(t, err)
	}

	f.svc = NewReviewService(cfg, Dependencies{
		Predictions: f.predictions,
		Labels:      f.labels,
		Files:       f.files,
		Publisher:   f.publisher,
	})
	return f
}

func prediction(id string, status model.ReviewStatus) *model.AIPrediction {
	reg := "D-AIZA"
	return &model.AIPrediction{
		ResourceID:         id,
		AircraftClass:      "A320",
		AircraftConfidence: 0.98,
		AirlineClass:       "DLH",
		AirlineConfidence:  0.97,
		Registration:       &reg,
		RegistrationRegion: "DE",
		Clarity:            0.9,
		Occlusion:          0.1,
		ReviewStatus:       status,
		CreatedAt:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) status(t *testing.T, id string) model.ReviewStatus {
	t.Helper()
	p, err := f.predictions.Get(context.Background(), id)
	require.NoError(t, err)
	return p.ReviewStatus
}

func TestApprove_MaterializesLabel(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))

	res, err := f.svc.Approve(context.Background(), "img_001.jpg", false)
	require.NoError(t, err)

	assert.Equal(t, model.ReviewApproved, res.Status)
	assert.Equal(t, "A320-0001.jpg", res.FileName)
	assert.Equal(t, "A320-0001.jpg", f.files.relocated["img_001.jpg"])

	label, ok := f.labels.Get(res.LabelID)
	require.True(t, ok)
	assert.Equal(t, "D-AIZA", label.Registration)
	assert.Equal(t, "DLH", label.AirlineID)
	assert.Equal(t, 0.1, label.Block)
	assert.False(t, label.AIApproved)

	p, err := f.predictions.Get(context.Background(), "img_001.jpg")
	require.NoError(t, err)
	assert.Equal(t, model.ReviewApproved, p.ReviewStatus)
	assert.Equal(t, res.LabelID, p.LabelID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.DecisionEvent{ResourceID: "img_001.jpg", Status: model.ReviewApproved, LabelID: res.LabelID}, f.publisher.events[0])
}

func TestApprove_TwiceReportsAlreadyReviewed(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, "img_001.jpg", true)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, "img_001.jpg", false)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeAlreadyReviewed, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	assert.Equal(t, string(model.ReviewAutoApproved), appErr.Details["review_status"])

	assert.Equal(t, model.ReviewAutoApproved, f.status(t, "img_001.jpg"))
	assert.Equal(t, 1, f.labels.Count())
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), "missing.jpg", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestApprove_InvalidResourceID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), "../etc/passwd", false)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestApprove_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))

	const reviewers = 16
	errs := make([]error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), "img_001.jpg", false)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyReviewed), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.labels.Count())
}

func TestApprove_DownstreamFailureKeepsStatus(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))
	f.files.relocateErr = errors.New("disk full")

	_, err := f.svc.Approve(context.Background(), "img_001.jpg", false)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeDownstreamFailed, appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	assert.NotEmpty(t, appErr.Details["label_id"])
	assert.Equal(t, "relocate_image", appErr.Details["stage"])

	assert.Equal(t, model.ReviewApproved, f.status(t, "img_001.jpg"))

	// retrying approval must not create a second label
	_, err = f.svc.Approve(context.Background(), "img_001.jpg", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyReviewed))
	assert.Equal(t, 1, f.labels.Count())
	assert.Empty(t, f.publisher.events)
}

func TestApprove_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.Approve(context.Background(), "img_001.jpg", false)
	assert.NoError(t, err)
}

func TestApprove_SurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, prediction("img_001.jpg", model.ReviewPending))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Approve(ctx, "img_001.jpg", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.labels.Count())
}

func TestReject(t *testing.T) {
	f := newFixture(t,
		prediction("keep.jpg", model.ReviewPending),
		prediction("bad.jpg", model.ReviewPending),
	)
	ctx := context.Background()

	res, err := f.svc.Reject(ctx, "keep.jpg", false)
	require.NoError(t, err)
	assert.False(t, res.Excluded)

	res, err = f.svc.Reject(ctx, "bad.jpg", true)
	require.NoError(t, err)
	assert.True(t, res.Excluded)
	assert.Equal(t, []string{"bad.jpg"}, f.files.excluded)

	_, err = f.svc.Approve(ctx, "bad.jpg", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyReviewed))
	assert.Equal(t, model.ReviewRejected, f.status(t, "bad.jpg"))

	require.Len(t, f.publisher.events, 2)
	assert.True(t, f.publisher.events[1].Excluded)
}

func TestReject_ExclusionFailure(t *testing.T) {
	f := newFixture(t, prediction("bad.jpg", model.ReviewPending))
	f.files.excludeErr = errors.New("permission denied")

	_, err := f.svc.Reject(context.Background(), "bad.jpg", true)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDownstreamFailed))
	assert.Equal(t, model.ReviewRejected, f.status(t, "bad.jpg"))
}

func TestBulkApprove_IndependentItems(t *testing.T) {
	f := newFixture(t,
		prediction("x.jpg", model.ReviewPending),
		prediction("y.jpg", model.ReviewPending),
	)
	ctx := context.Background()

	_, err := f.svc.Reject(ctx, "y.jpg", false)
	require.NoError(t, err)

	resp, err := f.svc.BulkApprove(ctx, []string{"x.jpg", "y.jpg", "missing.jpg"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, model.OutcomeOK, resp.Results[0].Outcome)
	assert.Equal(t, "x.jpg", resp.Results[0].ResourceID)
	assert.NotEmpty(t, resp.Results[0].LabelID)
	assert.Equal(t, model.OutcomeAlreadyReviewed, resp.Results[1].Outcome)
	assert.Equal(t, model.OutcomeNotFound, resp.Results[2].Outcome)
	assert.Equal(t, 1, resp.SuccessCount)
	assert.Equal(t, 2, resp.FailedCount)

	assert.Equal(t, model.ReviewAutoApproved, f.status(t, "x.jpg"))
	assert.Equal(t, model.ReviewRejected, f.status(t, "y.jpg"))

	label, ok := f.labels.Get(resp.Results[0].LabelID)
	require.True(t, ok)
	assert.True(t, label.AIApproved)
}

func TestBulkApprove_DuplicateIDs(t *testing.T) {
	f := newFixture(t, prediction("x.jpg", model.ReviewPending))

	resp, err := f.svc.BulkApprove(context.Background(), []string{"x.jpg", "x.jpg"})
	require.NoError(t, err)

	outcomes := []model.BulkItemOutcome{resp.Results[0].Outcome, resp.Results[1].Outcome}
	assert.ElementsMatch(t, []model.BulkItemOutcome{model.OutcomeOK, model.OutcomeAlreadyReviewed}, outcomes)
	assert.Equal(t, 1, f.labels.Count())
}

func TestBulkApprove_DownstreamFailureCarriesLabel(t *testing.T) {
	f := newFixture(t, prediction("x.jpg", model.ReviewPending))
	f.files.relocateErr = errors.New("disk full")

	resp, err := f.svc.BulkApprove(context.Background(), []string{"x.jpg"})
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeDownstreamFailed, resp.Results[0].Outcome)
	assert.NotEmpty(t, resp.Results[0].LabelID)
	assert.Equal(t, "A320-0001.jpg", resp.Results[0].FileName)
}

func TestBulkApprove_RejectsBadRequests(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BulkApprove(context.Background(), nil)
	assert.Equal(t, http.StatusBadRequest, apperrors.AsAppError(err).HTTPStatus)

	ids := make([]string, 11)
	for i := range ids {
		ids[i] = "img.jpg"
	}
	_, err = f.svc.BulkApprove(context.Background(), ids)
	assert.Equal(t, http.StatusBadRequest, apperrors.AsAppError(err).HTTPStatus)
}

func TestListPendingAndStats(t *testing.T) {
	novel := prediction("novel.jpg", model.ReviewPending)
	novel.IsNewClass = true
	novel.OutlierScore = 0.8
	low := prediction("low.jpg", model.ReviewPending)
	low.AirlineConfidence = 0.5
	high := prediction("high.jpg", model.ReviewPending)
	done := prediction("done.jpg", model.ReviewApproved)

	f := newFixture(t, high, low, novel, done)
	ctx := context.Background()

	view, err := f.svc.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Total)
	got := make([]string, 0, len(view.Items))
	for _, item := range view.Items {
		got = append(got, item.ResourceID)
	}
	assert.Equal(t, []string{"novel.jpg", "low.jpg", "high.jpg"}, got)
	assert.True(t, view.Items[2].AutoApprovable)

	view, err = f.svc.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Total)
	assert.Len(t, view.Items, 1)

	auto, err := f.svc.ListAutoApprovable(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, auto.Total)
	assert.Equal(t, "high.jpg", auto.Items[0].ResourceID)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStats{PendingCount: 3, NovelCount: 1, AutoApprovableCount: 1}, *stats)

	_, err = f.svc.ListPending(ctx, -1)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestStats_AllAutoApprovableAfterManualReview(t *testing.T) {
	low := prediction("low.jpg", model.ReviewPending)
	low.AircraftConfidence = 0.3
	f := newFixture(t, low, prediction("high.jpg", model.ReviewPending))
	ctx := context.Background()

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.AllAutoApprovable)

	_, err = f.svc.Approve(ctx, "low.jpg", false)
	require.NoError(t, err)

	stats, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.AllAutoApprovable)
}

func TestApprove_ClassWithPathSeparatorMaterializes(t *testing.T) {
	root := t.TempDir()
	images := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(images, "img_001.jpg"), []byte("jpeg"), 0o644))

	ctx := context.Background()
	files, err := repository.NewFileStore(ctx, afs.New(), images,
		filepath.Join(root, "labeled"), filepath.Join(root, "excluded"))
	require.NoError(t, err)

	predictions := repository.NewMemoryPredictionRepository()
	p := prediction("img_001.jpg", model.ReviewPending)
	p.AircraftClass = "737/800"
	_, err = predictions.Insert(ctx, p)
	require.NoError(t, err)

	svc := NewReviewService(&config.Config{
		HighConfidenceThreshold: 0.95,
		BulkApproveConcurrency:  1,
		BulkApproveMaxItems:     10,
		RequestTimeout:          5 * time.Second,
		Log:                     logger.NewDiscard(),
	}, Dependencies{
		Predictions: predictions,
		Labels:      repository.NewMemoryLabelRepository(),
		Files:       files,
	})

	res, err := svc.Approve(ctx, "img_001.jpg", false)
	require.NoError(t, err)
	assert.Equal(t, "737_800-0001.jpg", res.FileName)
	assert.FileExists(t, filepath.Join(root, "labeled", "737_800-0001.jpg"))
}
