package model

// ImageEntry is one image still waiting for annotation, as seen by one holder
type ImageEntry struct {
	ResourceID string `json:"resource_id"`
	Locked     bool   `json:"locked"`
	LockedBy   string `json:"locked_by,omitempty"`
}

type ImageList struct {
	Total int          `json:"total"`
	Items []ImageEntry `json:"items"`
}

type SkipRequest struct {
	ResourceID string `json:"resource_id" validate:"required,max=255,resource_name"`
}

type SkipResult struct {
	ResourceID     string `json:"resource_id"`
	AlreadySkipped bool   `json:"already_skipped"`
}
