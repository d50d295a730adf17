package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/sazed/internal/core"
)

// Documents stores generated knowledge-base entries as Drive files through
// the gateway and asks the knowledge base to pick them up.
type Documents struct {
	client *Client
}

func NewDocuments(client *Client) *Documents {
	return &Documents{client: client}
}

func (d *Documents) Write(ctx context.Context, doc core.Document) (string, error) {
	payload := map[string]any{
		"name":    doc.Name,
		"content": doc.Content,
	}
	if doc.FolderID != "" {
		payload["folder_id"] = doc.FolderID
	}
	if doc.MimeType != "" {
		payload["mime_type"] = doc.MimeType
	}

	resp, err := d.client.Do(ctx, http.MethodPost, "/storage/files", nil, payload)
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("write document: gateway returned %d: %s", resp.StatusCode, resp.Body)
	}

	var created struct {
		ID     string `json:"id"`
		FileID string `json:"file_id"`
	}
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return "", fmt.Errorf("write document: decode: %w", err)
	}
	if created.ID != "" {
		return created.ID, nil
	}
	if created.FileID != "" {
		return created.FileID, nil
	}
	return "", fmt.Errorf("write document: response carries no file id")
}

func (d *Documents) Reindex(ctx context.Context) error {
	resp, err := d.client.Do(ctx, http.MethodPost, "/kb/sync", nil, nil)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("reindex: gateway returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
