package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	reviewerrors "aerolabel/internal/review/errors"
	"aerolabel/pkg/model"
)

type memoryRecord struct {
	mu   sync.Mutex
	pred model.AIPrediction
}

// MemoryPredictionRepository keeps predictions in process memory. The map lock
// guards membership only; status changes happen under the record's own mutex.
type MemoryPredictionRepository struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	now     func() time.Time
}

func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
}

func (r *MemoryPredictionRepository) record(resourceID string) (*memoryRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[resourceID]
	return rec, ok
}

func (r *MemoryPredictionRepository) Get(ctx context.Context, resourceID string) (*model.AIPrediction, error) {
	rec, ok := r.record(resourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", reviewerrors.ErrNotFound, resourceID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return clonePrediction(&rec.pred), nil
}

func (r *MemoryPredictionRepository) ListByStatus(ctx context.Context, status model.ReviewStatus) ([]*model.AIPrediction, error) {
	r.mu.RLock()
	recs := make([]*memoryRecord, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	r.mu.RUnlock()

	var out []*model.AIPrediction
	for _, rec := range recs {
		rec.mu.Lock()
		if rec.pred.ReviewStatus == status {
			out = append(out, clonePrediction(&rec.pred))
		}
		rec.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out, nil
}

func (r *MemoryPredictionRepository) TrySetStatus(ctx context.Context, resourceID string, expected, next model.ReviewStatus) (bool, error) {
	rec, ok := r.record(resourceID)
	if !ok {
		return false, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.pred.ReviewStatus != expected {
		return false, nil
	}
	now := r.now().UTC()
	rec.pred.ReviewStatus = next
	rec.pred.ReviewedAt = &now
	return true, nil
}

func (r *MemoryPredictionRepository) SetLabelID(ctx context.Context, resourceID, labelID string) error {
	rec, ok := r.record(resourceID)
	if !ok {
		return fmt.Errorf("%w: %s", reviewerrors.ErrNotFound, resourceID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.pred.LabelID = labelID
	return nil
}

func (r *MemoryPredictionRepository) Insert(ctx context.Context, p *model.AIPrediction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[p.ResourceID]; exists {
		return false, nil
	}

	rec := &memoryRecord{pred: *clonePrediction(p)}
	if rec.pred.CreatedAt.IsZero() {
		rec.pred.CreatedAt = r.now().UTC()
	}
	r.records[p.ResourceID] = rec
	return true, nil
}

func clonePrediction(p *model.AIPrediction) *model.AIPrediction {
	cp := *p
	if p.Registration != nil {
		reg := *p.Registration
		cp.Registration = &reg
	}
	if p.ReviewedAt != nil {
		at := *p.ReviewedAt
		cp.ReviewedAt = &at
	}
	return &cp
}
