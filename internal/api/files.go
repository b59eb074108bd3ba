package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type pathBody struct {
	Path string `json:"path"`
}

type filepathBody struct {
	Filepath string `json:"filepath"`
}

// ValidateInput asks the backend whether path is a usable input folder.
func (c *Client) ValidateInput(ctx context.Context, path string) (*Validation, error) {
	return c.validate(ctx, "/api/file/validate/input", pathBody{Path: path})
}

// ValidateOutput asks the backend whether path is a usable output folder.
func (c *Client) ValidateOutput(ctx context.Context, path string) (*Validation, error) {
	return c.validate(ctx, "/api/file/validate/output", pathBody{Path: path})
}

// ValidateCSV asks the backend whether filepath is a readable repository CSV.
func (c *Client) ValidateCSV(ctx context.Context, filepath string) (*Validation, error) {
	return c.validate(ctx, "/api/file/validate/csv", filepathBody{Filepath: filepath})
}

func (c *Client) validate(ctx context.Context, path string, body any) (*Validation, error) {
	p, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return decodeInto[Validation](c, p), nil
}

// Upload sends r as a multipart form file named name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	const endpoint = "/api/file/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(endpoint, nil), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.send(req, endpoint)
}

// Download requests a file from the backend.
func (c *Client) Download(ctx context.Context, path string) (Payload, error) {
	return c.post(ctx, "/api/file/download", pathBody{Path: path})
}

// ListDirectory lists the CSV files under path.
func (c *Client) ListDirectory(ctx context.Context, path string) (Payload, error) {
	return c.post(ctx, "/api/file/list", pathBody{Path: path})
}
