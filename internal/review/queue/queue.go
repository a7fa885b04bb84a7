// Package queue orders pending predictions for human review and decides which
// of them qualify for one-click approval. It performs no I/O.
package queue

import (
	"cmp"
	"slices"

	"aerolabel/pkg/model"
)

type Thresholds struct {
	High float64
}

type Result struct {
	Ordered        []*model.AIPrediction
	AutoApprovable []*model.AIPrediction
	Stats          model.QueueStats
}

// IsAutoApprovable ignores quality and registration confidences.
func IsAutoApprovable(p *model.AIPrediction, th Thresholds) bool {
	return !p.IsNewClass &&
		p.AircraftConfidence >= th.High &&
		p.AirlineConfidence >= th.High
}

// Compute returns pending predictions in review order: novel-class items first
// by descending outlier score, then regular items by ascending min class confidence.
// Equal keys fall back to CreatedAt and then ResourceID, so the order is total.
func Compute(preds []*model.AIPrediction, th Thresholds) Result {
	var novel, regular []*model.AIPrediction
	for _, p := range preds {
		if p == nil || p.ReviewStatus != model.ReviewPending {
			continue
		}
		if p.IsNewClass {
			novel = append(novel, p)
		} else {
			regular = append(regular, p)
		}
	}

	slices.SortStableFunc(novel, func(a, b *model.AIPrediction) int {
		if c := cmp.Compare(b.OutlierScore, a.OutlierScore); c != 0 {
			return c
		}
		return tieBreak(a, b)
	})
	slices.SortStableFunc(regular, func(a, b *model.AIPrediction) int {
		if c := cmp.Compare(a.MinClassConfidence(), b.MinClassConfidence()); c != 0 {
			return c
		}
		return tieBreak(a, b)
	})

	res := Result{
		Ordered: make([]*model.AIPrediction, 0, len(novel)+len(regular)),
	}
	res.Ordered = append(res.Ordered, novel...)
	res.Ordered = append(res.Ordered, regular...)

	for _, p := range res.Ordered {
		if IsAutoApprovable(p, th) {
			res.AutoApprovable = append(res.AutoApprovable, p)
		}
	}

	res.Stats = model.QueueStats{
		PendingCount:        len(res.Ordered),
		NovelCount:          len(novel),
		AutoApprovableCount: len(res.AutoApprovable),
		AllAutoApprovable:   len(res.Ordered) > 0 && len(res.AutoApprovable) == len(res.Ordered),
	}
	return res
}

// Summaries decorates predictions with their queue position and eligibility.
// limit <= 0 returns all of them.
func Summaries(preds []*model.AIPrediction, th Thresholds, limit int) []*model.PredictionSummary {
	if limit > 0 && limit < len(preds) {
		preds = preds[:limit]
	}

	out := make([]*model.PredictionSummary, 0, len(preds))
	for i, p := range preds {
		out = append(out, &model.PredictionSummary{
			AIPrediction:   p,
			Position:       i + 1,
			AutoApprovable: IsAutoApprovable(p, th),
		})
	}
	return out
}

func tieBreak(a, b *model.AIPrediction) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ResourceID, b.ResourceID)
}
