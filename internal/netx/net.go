// Package netx holds the plain HTTP calls the client makes outside gRPC:
// uploads to presigned object URLs and JSON webhooks.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned when the peer answers with an unexpected status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s; body: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func do(client *http.Client, req *http.Request, want int) error {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// PutObject uploads body to a presigned PUT URL and expects 200 OK.
func PutObject(ctx context.Context, client *http.Client, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return do(client, req, http.StatusOK)
}

// PostJSON sends v as a JSON body and expects the want status.
func PostJSON(ctx context.Context, client *http.Client, url string, v any, want int) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, req, want)
}
