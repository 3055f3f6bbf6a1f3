package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yash23jamak/LegacyLift-B/internal/llm"
	"github.com/yash23jamak/LegacyLift-B/internal/version"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestCompleteSendsRequestAndParsesResponse(t *testing.T) {
	t.Parallel()

	p := NewProvider("openai", "http://mock", "key", 5*time.Second)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/chat/completions", r.URL.Path)
			require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			require.Equal(t, version.UserAgent(), r.Header.Get("User-Agent"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			var reqBody map[string]interface{}
			require.NoError(t, json.Unmarshal(body, &reqBody))
			require.Equal(t, "gpt-4o-mini", reqBody["model"])
			require.NotContains(t, reqBody, "stream")

			return jsonResponse(http.StatusOK, `{
				"choices": [{
					"index": 0,
					"finish_reason": "stop",
					"message": {"role": "assistant", "content": "hello"}
				}],
				"usage": {"prompt_tokens": 1, "completion_tokens": 2, "total_tokens": 3}
			}`), nil
		}),
	}

	resp, err := p.Complete(context.Background(), llm.ChatRequest{
		Model: "gpt-4o-mini",
		Messages: []llm.ChatMessage{
			{Role: llm.RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "hello", resp.Text)
	require.Equal(t, "stop", resp.FinishReason)
	require.Equal(t, 3, resp.Usage.Total())
	require.Equal(t, "openai", resp.Provider)
}

func TestCompleteSendsZeroTemperature(t *testing.T) {
	t.Parallel()

	p := NewProvider("openai", "http://mock", "", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			var reqBody map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
			require.Contains(t, reqBody, "temperature")
			require.Equal(t, 0.0, reqBody["temperature"])
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`), nil
		}),
	}

	_, err := p.Complete(context.Background(), llm.ChatRequest{
		Model:    "m",
		Messages: []llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
}

func TestEndpointAcceptsFullCompletionsURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://api.openai.com/v1/chat/completions", endpointFor(defaultBaseURL))
	require.Equal(t, "http://proxy/v1/chat/completions", endpointFor("http://proxy/"))
	require.Equal(t, "https://gw.example/openai/chat/completions", endpointFor("https://gw.example/openai/chat/completions"))
}

func TestCompleteStatusErrorIsClassifiable(t *testing.T) {
	t.Parallel()

	p := NewProvider("openai", "http://mock", "bad", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, `{"error":"invalid key"}`), nil
		}),
	}

	_, err := p.Complete(context.Background(), llm.ChatRequest{Model: "gpt-4o-mini"})
	require.Error(t, err)

	var statusErr *llm.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Equal(t, llm.MsgUnauthorized, llm.Classify(err).Message)
}

func TestCompleteMissingChoicesIsMalformed(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{}`, `{"choices":[]}`, `{"choices":[{"index":0}]}`, `not json`} {
		p := NewProvider("openai", "http://mock", "", 0)
		p.client = &http.Client{
			Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, body), nil
			}),
		}

		_, err := p.Complete(context.Background(), llm.ChatRequest{Model: "m"})
		require.ErrorIs(t, err, llm.ErrMalformedResponse, body)
	}
}

func TestCompleteEmptyContentIsNotAnError(t *testing.T) {
	t.Parallel()

	p := NewProvider("openai", "http://mock", "", 0)
	p.client = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":null}}]}`), nil
		}),
	}

	resp, err := p.Complete(context.Background(), llm.ChatRequest{Model: "m"})
	require.NoError(t, err)
	require.Empty(t, resp.Text)
}

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
