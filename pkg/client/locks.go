package client

import (
	"context"
	"net/url"

	"aerolabel/pkg/model"
)

type LockClient struct {
	httpClient *HttpClient
}

func NewLockClient(baseURL string) *LockClient {
	return &LockClient{httpClient: NewHttpClient(baseURL)}
}

func (c *LockClient) Acquire(ctx context.Context, resourceID, holderID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/locks/acquire", model.LockRequest{ResourceID: resourceID, HolderID: holderID})
}

func (c *LockClient) Heartbeat(ctx context.Context, resourceID, holderID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/locks/heartbeat", model.LockRequest{ResourceID: resourceID, HolderID: holderID})
}

func (c *LockClient) Release(ctx context.Context, resourceID, holderID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/locks/release", model.LockRequest{ResourceID: resourceID, HolderID: holderID})
}

func (c *LockClient) ReleaseAll(ctx context.Context, holderID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/locks/release-all", model.ReleaseAllRequest{HolderID: holderID})
}

func (c *LockClient) Status(ctx context.Context, resourceID string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/locks/status/"+url.PathEscape(resourceID))
}

func (c *LockClient) DecodeLease(resp *Response) (*model.ResourceLease, error) {
	var lease model.ResourceLease
	if err := resp.DecodeData(&lease); err != nil {
		return nil, err
	}
	return &lease, nil
}

func (c *LockClient) DecodeStatus(resp *Response) (*model.LockStatus, error) {
	var status model.LockStatus
	if err := resp.DecodeData(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
