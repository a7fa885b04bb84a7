package client

import (
	"context"
	"fmt"

	"aerolabel/pkg/model"
)

type ReviewClient struct {
	httpClient *HttpClient
}

func NewReviewClient(baseURL string) *ReviewClient {
	return &ReviewClient{httpClient: NewHttpClient(baseURL)}
}

// Submit posts a pipeline prediction for review.
func (c *ReviewClient) Submit(ctx context.Context, pred *model.AIPrediction) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/predictions", pred)
}

func (c *ReviewClient) Pending(ctx context.Context, limit int) (*Response, error) {
	path := "/api/v1/review/pending"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *ReviewClient) AutoApprovable(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/review/auto-approvable")
}

func (c *ReviewClient) Stats(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/review/stats")
}

func (c *ReviewClient) Approve(ctx context.Context, resourceID string, autoApprove bool) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/review/approve", model.ApproveRequest{ResourceID: resourceID, AutoApprove: autoApprove})
}

func (c *ReviewClient) BulkApprove(ctx context.Context, resourceIDs []string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/review/bulk-approve", model.BulkApproveRequest{ResourceIDs: resourceIDs})
}

func (c *ReviewClient) Reject(ctx context.Context, resourceID string, markInvalid bool) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/review/reject", model.RejectRequest{ResourceID: resourceID, MarkInvalid: markInvalid})
}

func (c *ReviewClient) DecodeQueue(resp *Response) (*model.QueueView, error) {
	var view model.QueueView
	if err := resp.DecodeData(&view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *ReviewClient) DecodeStats(resp *Response) (*model.QueueStats, error) {
	var stats model.QueueStats
	if err := resp.DecodeData(&stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *ReviewClient) DecodeApproval(resp *Response) (*model.ApprovalResult, error) {
	var result model.ApprovalResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ReviewClient) DecodeBulk(resp *Response) (*model.BulkApproveResponse, error) {
	var result model.BulkApproveResponse
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *ReviewClient) DecodeReject(resp *Response) (*model.RejectResult, error) {
	var result model.RejectResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
