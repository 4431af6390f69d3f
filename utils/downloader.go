package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxAttachmentSize caps how much of a single attachment is re-uploaded.
const MaxAttachmentSize = 25 << 20

// ErrAttachmentTooLarge is returned when a download exceeds MaxAttachmentSize.
var ErrAttachmentTooLarge = fmt.Errorf("attachment exceeds %d bytes", MaxAttachmentSize)

// DownloadAttachment fetches url into memory.
func DownloadAttachment(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = AttachmentClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}
	return data, nil
}
