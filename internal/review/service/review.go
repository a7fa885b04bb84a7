package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	reviewerrors "aerolabel/internal/review/errors"
	"aerolabel/internal/review/queue"
	"aerolabel/internal/review/repository"
	"aerolabel/internal/review/validator"
	"aerolabel/pkg/config"
	apperrors "aerolabel/pkg/errors"
	"aerolabel/pkg/metrics"
	"aerolabel/pkg/model"
)

const (
	operationApprove     = "approve"
	operationBulkApprove = "bulk_approve"
	operationReject      = "reject"
)

type ReviewService interface {
	ListPending(ctx context.Context, limit int) (*model.QueueView, error)
	ListAutoApprovable(ctx context.Context) (*model.QueueView, error)
	Stats(ctx context.Context) (*model.QueueStats, error)
	Approve(ctx context.Context, resourceID string, auto bool) (*model.ApprovalResult, error)
	Reject(ctx context.Context, resourceID string, markInvalid bool) (*model.RejectResult, error)
	BulkApprove(ctx context.Context, resourceIDs []string) (*model.BulkApproveResponse, error)
}

type reviewService struct {
	cfg         *config.Config
	predictions repository.PredictionRepository
	labels      repository.LabelRepository
	files       repository.FileStore
	publisher   DecisionPublisher
	validator   *validator.ReviewValidator
	metrics     *metrics.ReviewMetrics
}

type Dependencies struct {
	Predictions repository.PredictionRepository
	Labels      repository.LabelRepository
	Files       repository.FileStore
	Publisher   DecisionPublisher
	Validator   *validator.ReviewValidator
	Metrics     *metrics.ReviewMetrics
}

func NewReviewService(cfg *config.Config, deps Dependencies) ReviewService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = NewNoopDecisionPublisher()
	}
	v := deps.Validator
	if v == nil {
		v = validator.NewReviewValidator(cfg.Log)
	}

	return &reviewService{
		cfg:         cfg,
		predictions: deps.Predictions,
		labels:      deps.Labels,
		files:       deps.Files,
		publisher:   publisher,
		validator:   v,
		metrics:     deps.Metrics,
	}
}

func (s *reviewService) thresholds() queue.Thresholds {
	return queue.Thresholds{High: s.cfg.HighConfidenceThreshold}
}

func (s *reviewService) compute(ctx context.Context) (queue.Result, error) {
	preds, err := s.predictions.ListByStatus(ctx, model.ReviewPending)
	if err != nil {
		s.cfg.Log.Error("Failed to list pending predictions", "error", err)
		return queue.Result{}, apperrors.Internal("Failed to list pending predictions", err)
	}

	res := queue.Compute(preds, s.thresholds())
	s.metrics.SetQueue(res.Stats.PendingCount, res.Stats.AutoApprovableCount)
	return res, nil
}

func (s *reviewService) ListPending(ctx context.Context, limit int) (*model.QueueView, error) {
	if limit < 0 {
		return nil, apperrors.InvalidInput("limit must not be negative")
	}

	res, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	return &model.QueueView{
		Total: res.Stats.PendingCount,
		Items: queue.Summaries(res.Ordered, s.thresholds(), limit),
	}, nil
}

func (s *reviewService) ListAutoApprovable(ctx context.Context) (*model.QueueView, error) {
	res, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	return &model.QueueView{
		Total: len(res.AutoApprovable),
		Items: queue.Summaries(res.AutoApprovable, s.thresholds(), 0),
	}, nil
}

func (s *reviewService) Stats(ctx context.Context) (*model.QueueStats, error) {
	res, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	return &res.Stats, nil
}

func (s *reviewService) Approve(ctx context.Context, resourceID string, auto bool) (*model.ApprovalResult, error) {
	if err := s.validator.ValidateApprove(&model.ApproveRequest{ResourceID: resourceID, AutoApprove: auto}); err != nil {
		return nil, validationError(err)
	}
	return s.approve(ctx, resourceID, auto, operationApprove)
}

func (s *reviewService) approve(ctx context.Context, resourceID string, auto bool, operation string) (*model.ApprovalResult, error) {
	start := time.Now()

	pred, err := s.predictions.Get(ctx, resourceID)
	if err != nil {
		return nil, s.lookupError(resourceID, err)
	}

	next := model.ReviewApproved
	if auto {
		next = model.ReviewAutoApproved
	}

	if err := s.transition(ctx, resourceID, next); err != nil {
		return nil, err
	}
	s.metrics.RecordDecision(string(next), time.Since(start).Seconds(), operation)
	s.cfg.Log.Info("Prediction approved",
		"resource_id", resourceID,
		"review_status", next,
		"operation", operation,
	)

	// The transition is committed. Materialization runs to completion even if
	// the caller goes away.
	mctx, cancel := s.detached(ctx)
	defer cancel()

	result, err := s.materialize(mctx, pred, next)
	if err != nil {
		return nil, err
	}

	s.publish(mctx, model.DecisionEvent{ResourceID: resourceID, Status: next, LabelID: result.LabelID})
	return result, nil
}

// transition performs the pending -> next compare-and-set.
func (s *reviewService) transition(ctx context.Context, resourceID string, next model.ReviewStatus) error {
	ok, err := s.predictions.TrySetStatus(ctx, resourceID, model.ReviewPending, next)
	if err != nil {
		s.metrics.RecordFailure(string(model.OutcomeError))
		s.cfg.Log.Error("Failed to update review status", "resource_id", resourceID, "error", err)
		return apperrors.Internal("Failed to update review status", err)
	}
	if ok {
		return nil
	}

	s.metrics.RecordFailure(string(model.OutcomeAlreadyReviewed))
	current := "unknown"
	if p, err := s.predictions.Get(ctx, resourceID); err == nil {
		current = string(p.ReviewStatus)
	}
	s.cfg.Log.Info("Prediction already reviewed",
		"resource_id", resourceID,
		"attempted_status", next,
		"current_status", current,
	)
	return apperrors.AlreadyReviewed(resourceID, current)
}

func (s *reviewService) materialize(ctx context.Context, pred *model.AIPrediction, status model.ReviewStatus) (*model.ApprovalResult, error) {
	label := labelFromPrediction(pred, status)
	details := map[string]any{
		"resource_id":   pred.ResourceID,
		"review_status": string(status),
	}

	labelID, err := s.labels.Create(ctx, label)
	if err != nil {
		details["stage"] = "create_label"
		return nil, s.downstreamFailed("Label creation failed after the prediction was approved", err, details)
	}
	details["label_id"] = labelID
	details["file_name"] = label.FileName

	if err := s.files.RelocateToAnnotated(ctx, pred.ResourceID, label.FileName); err != nil {
		details["stage"] = "relocate_image"
		return nil, s.downstreamFailed("Image relocation failed after the label was created", err, details)
	}

	if err := s.predictions.SetLabelID(ctx, pred.ResourceID, labelID); err != nil {
		details["stage"] = "link_label"
		return nil, s.downstreamFailed("Linking the label to the prediction failed", err, details)
	}

	return &model.ApprovalResult{
		ResourceID: pred.ResourceID,
		Status:     status,
		LabelID:    labelID,
		FileName:   label.FileName,
	}, nil
}

func (s *reviewService) Reject(ctx context.Context, resourceID string, markInvalid bool) (*model.RejectResult, error) {
	if err := s.validator.ValidateReject(&model.RejectRequest{ResourceID: resourceID, MarkInvalid: markInvalid}); err != nil {
		return nil, validationError(err)
	}
	start := time.Now()

	if _, err := s.predictions.Get(ctx, resourceID); err != nil {
		return nil, s.lookupError(resourceID, err)
	}

	if err := s.transition(ctx, resourceID, model.ReviewRejected); err != nil {
		return nil, err
	}
	s.metrics.RecordDecision(string(model.ReviewRejected), time.Since(start).Seconds(), operationReject)
	s.cfg.Log.Info("Prediction rejected", "resource_id", resourceID, "mark_invalid", markInvalid)

	mctx, cancel := s.detached(ctx)
	defer cancel()

	if markInvalid {
		if err := s.files.MarkPermanentlyExcluded(mctx, resourceID); err != nil {
			return nil, s.downstreamFailed("Excluding the image failed after the prediction was rejected", err, map[string]any{
				"resource_id":   resourceID,
				"review_status": string(model.ReviewRejected),
				"stage":         "exclude_image",
			})
		}
	}

	s.publish(mctx, model.DecisionEvent{ResourceID: resourceID, Status: model.ReviewRejected, Excluded: markInvalid})
	return &model.RejectResult{
		ResourceID: resourceID,
		Status:     model.ReviewRejected,
		Excluded:   markInvalid,
	}, nil
}

// BulkApprove approves each id independently with auto=true. Results are
// index-aligned with resourceIDs and one failure never stops the others.
func (s *reviewService) BulkApprove(ctx context.Context, resourceIDs []string) (*model.BulkApproveResponse, error) {
	req := &model.BulkApproveRequest{ResourceIDs: resourceIDs}
	if err := s.validator.ValidateBulkApprove(req, s.cfg.BulkApproveMaxItems); err != nil {
		return nil, validationError(err)
	}

	results := make([]model.BulkItemResult, len(resourceIDs))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.BulkApproveConcurrency))
	for i, id := range resourceIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = s.bulkItem(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	resp := &model.BulkApproveResponse{Results: results}
	for _, r := range results {
		if r.Outcome == model.OutcomeOK {
			resp.SuccessCount++
		} else {
			resp.FailedCount++
		}
	}

	s.cfg.Log.Info("Bulk approve completed",
		"requested", len(resourceIDs),
		"succeeded", resp.SuccessCount,
		"failed", resp.FailedCount,
	)
	return resp, nil
}

func (s *reviewService) bulkItem(ctx context.Context, resourceID string) model.BulkItemResult {
	item := model.BulkItemResult{ResourceID: resourceID}

	res, err := s.approve(ctx, resourceID, true, operationBulkApprove)
	if err == nil {
		item.Outcome = model.OutcomeOK
		item.LabelID = res.LabelID
		item.FileName = res.FileName
		s.metrics.RecordBulkItem(string(item.Outcome))
		return item
	}

	appErr := apperrors.AsAppError(err)
	item.Error = appErr.Message
	switch appErr.Code {
	case apperrors.CodeNotFound:
		item.Outcome = model.OutcomeNotFound
	case apperrors.CodeAlreadyReviewed:
		item.Outcome = model.OutcomeAlreadyReviewed
	case apperrors.CodeDownstreamFailed:
		item.Outcome = model.OutcomeDownstreamFailed
		if id, ok := appErr.Details["label_id"].(string); ok {
			item.LabelID = id
		}
		if name, ok := appErr.Details["file_name"].(string); ok {
			item.FileName = name
		}
	default:
		item.Outcome = model.OutcomeError
	}

	s.metrics.RecordBulkItem(string(item.Outcome))
	return item
}

func (s *reviewService) lookupError(resourceID string, err error) error {
	if errors.Is(err, reviewerrors.ErrNotFound) {
		s.metrics.RecordFailure(string(model.OutcomeNotFound))
		return apperrors.NotFoundWithID("Prediction", resourceID)
	}
	s.metrics.RecordFailure(string(model.OutcomeError))
	s.cfg.Log.Error("Failed to load prediction", "resource_id", resourceID, "error", err)
	return apperrors.Internal("Failed to load prediction", err)
}

func (s *reviewService) downstreamFailed(message string, err error, details map[string]any) error {
	s.metrics.RecordFailure(string(model.OutcomeDownstreamFailed))
	args := []any{"error", err}
	for k, v := range details {
		args = append(args, k, v)
	}
	s.cfg.Log.Error(message, args...)
	return apperrors.DownstreamFailed(message, err, details)
}

func (s *reviewService) publish(ctx context.Context, event model.DecisionEvent) {
	if err := s.publisher.PublishDecision(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish decision event",
			"resource_id", event.ResourceID,
			"review_status", event.Status,
			"error", err,
		)
	}
}

func (s *reviewService) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func labelFromPrediction(p *model.AIPrediction, status model.ReviewStatus) *model.Label {
	label := &model.Label{
		OriginalFileName: p.ResourceID,
		TypeID:           p.AircraftClass,
		TypeName:         p.AircraftClass,
		AirlineID:        p.AirlineClass,
		AirlineName:      p.AirlineClass,
		Clarity:          p.Clarity,
		Block:            p.Occlusion,
		RegistrationArea: p.RegistrationRegion,
		ReviewStatus:     status,
		AIApproved:       status == model.ReviewAutoApproved,
	}
	if p.Registration != nil {
		label.Registration = *p.Registration
	}
	return label
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.New(apperrors.CodeValidation, "Request validation failed", http.StatusBadRequest).
			WithDetails(map[string]any{"errors": []validator.ValidationError(verrs)})
	}
	return apperrors.InvalidInput(err.Error())
}
