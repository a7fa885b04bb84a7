package model

type QueueStats struct {
	PendingCount        int  `json:"pending_count"`
	NovelCount          int  `json:"novel_count"`
	AutoApprovableCount int  `json:"auto_approvable_count"`
	AllAutoApprovable   bool `json:"all_auto_approvable"`
}

type ApproveRequest struct {
	ResourceID  string `json:"resource_id" validate:"required,max=255,resource_name"`
	AutoApprove bool   `json:"auto_approve"`
}

type RejectRequest struct {
	ResourceID  string `json:"resource_id" validate:"required,max=255,resource_name"`
	MarkInvalid bool   `json:"mark_invalid"`
}

type BulkApproveRequest struct {
	ResourceIDs []string `json:"resource_ids" validate:"required,min=1,dive,required,max=255,resource_name"`
}

type ApprovalResult struct {
	ResourceID string       `json:"resource_id"`
	Status     ReviewStatus `json:"review_status"`
	LabelID    string       `json:"label_id"`
	FileName   string       `json:"file_name"`
}

type BulkItemOutcome string

const (
	OutcomeOK               BulkItemOutcome = "ok"
	OutcomeNotFound         BulkItemOutcome = "not_found"
	OutcomeAlreadyReviewed  BulkItemOutcome = "already_reviewed"
	OutcomeDownstreamFailed BulkItemOutcome = "downstream_failed"
	OutcomeError            BulkItemOutcome = "error"
)

type BulkItemResult struct {
	ResourceID string          `json:"resource_id"`
	Outcome    BulkItemOutcome `json:"outcome"`
	LabelID    string          `json:"label_id,omitempty"`
	FileName   string          `json:"file_name,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type BulkApproveResponse struct {
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	Results      []BulkItemResult `json:"results"`
}

// DecisionEvent is published after a prediction leaves the pending state
type DecisionEvent struct {
	ResourceID string       `json:"resource_id"`
	Status     ReviewStatus `json:"review_status"`
	LabelID    string       `json:"label_id,omitempty"`
	Excluded   bool         `json:"excluded,omitempty"`
}

type QueueView struct {
	Total int                  `json:"total"`
	Items []*PredictionSummary `json:"items"`
}

type RejectResult struct {
	ResourceID string       `json:"resource_id"`
	Status     ReviewStatus `json:"review_status"`
	Excluded   bool         `json:"excluded"`
}

type IngestOutcome string

const (
	IngestQueued    IngestOutcome = "queued"
	IngestDuplicate IngestOutcome = "duplicate"
	IngestExcluded  IngestOutcome = "excluded"
)

type IngestResult struct {
	ResourceID string        `json:"resource_id"`
	Outcome    IngestOutcome `json:"outcome"`
}
