package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsk(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/llm/ask", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "why?", body["question"])
		assert.Equal(t, []any{}, body["history"])
		session, hasSession := body["session_id"]
		assert.True(t, hasSession)
		assert.Nil(t, session)
		_, _ = io.WriteString(w, `{"success":true,"answer":"because","session_id":"s-1"}`)
	})

	resp, err := c.Ask(context.Background(), AskRequest{InputPath: "in", OutputPath: "out", Question: "why?"})
	require.NoError(t, err)
	assert.Equal(t, "because", resp.Answer)
	assert.Equal(t, "s-1", resp.SessionID)
}

func TestExplainAndSummary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "in", body["input_path"])
		assert.Equal(t, "out", body["output_path"])
		switch r.URL.Path {
		case "/api/llm/explain":
			_, _ = io.WriteString(w, `{"explanation":"E"}`)
		case "/api/llm/summary":
			_, _ = io.WriteString(w, `{"summary":"S"}`)
		}
	})

	e, err := c.Explain(context.Background(), "in", "out")
	require.NoError(t, err)
	assert.Equal(t, "E", e)

	s, err := c.ProjectSummary(context.Background(), "in", "out")
	require.NoError(t, err)
	assert.Equal(t, "S", s)
}

func TestDeleteSessionUsesDELETE(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	require.NoError(t, c.DeleteSession(context.Background(), "s-1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/llm/session/s-1", path)
}

func TestLLMStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"status":{"available":true,"llm_type":"lmstudio","active_sessions":2}}`)
	})

	st, err := c.LLMStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.Equal(t, "lmstudio", st.LLMType)
	assert.Equal(t, 2, st.ActiveSessions)
}
