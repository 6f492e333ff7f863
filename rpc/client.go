package rpc

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote word-count service.
type Client struct {
	count *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient targets the service at baseURL, for example
// "http://localhost:8080".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		count: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+CountProcedure, opts...),
	}
}

// Count submits urls as one job and returns the raw response Struct.
func (c *Client) Count(ctx context.Context, urls []string, top int) (*structpb.Struct, error) {
	msg, err := NewCountRequest(urls, top)
	if err != nil {
		return nil, err
	}

	resp, err := c.count.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
