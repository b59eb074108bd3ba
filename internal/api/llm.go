package api

import (
	"context"
	"net/http"
	"net/url"
)

type projectBody struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
}

// LLMStatus reports whether the LLM service is reachable.
func (c *Client) LLMStatus(ctx context.Context) (*LLMStatus, error) {
	p, err := c.get(ctx, "/api/llm/status", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Status LLMStatus `json:"status"`
	}
	c.decode(p, &out)
	return &out.Status, nil
}

// Ask sends a question about the analyzed project.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if req.History == nil {
		req.History = []HistoryTurn{}
	}
	p, err := c.post(ctx, "/api/llm/ask", req)
	if err != nil {
		return nil, err
	}
	return decodeInto[AskResponse](c, p), nil
}

// Explain asks for an explanation of the analysis results.
func (c *Client) Explain(ctx context.Context, in, out string) (string, error) {
	p, err := c.post(ctx, "/api/llm/explain", projectBody{InputPath: in, OutputPath: out})
	if err != nil {
		return "", err
	}
	return p.String("explanation"), nil
}

// ProjectSummary asks for a summary of the analyzed project.
func (c *Client) ProjectSummary(ctx context.Context, in, out string) (string, error) {
	p, err := c.post(ctx, "/api/llm/summary", projectBody{InputPath: in, OutputPath: out})
	if err != nil {
		return "", err
	}
	return p.String("summary"), nil
}

// DeleteSession drops a chat session on the backend.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/llm/session/"+url.PathEscape(sessionID), nil, nil)
	return err
}
