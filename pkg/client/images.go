package client

import (
	"context"
	"net/url"

	"aerolabel/pkg/model"
)

type ImageClient struct {
	httpClient *HttpClient
}

func NewImageClient(baseURL string) *ImageClient {
	return &ImageClient{httpClient: NewHttpClient(baseURL)}
}

// List fetches the waiting images as seen by holderID.
func (c *ImageClient) List(ctx context.Context, holderID string) (*Response, error) {
	path := "/api/v1/images"
	if holderID != "" {
		path += "?holder_id=" + url.QueryEscape(holderID)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *ImageClient) Skip(ctx context.Context, resourceID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/images/skip", model.SkipRequest{ResourceID: resourceID})
}

func (c *ImageClient) DecodeList(resp *Response) (*model.ImageList, error) {
	var list model.ImageList
	if err := resp.DecodeData(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *ImageClient) DecodeSkip(resp *Response) (*model.SkipResult, error) {
	var result model.SkipResult
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
