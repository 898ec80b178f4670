package utils

import (
	"net/http"
	"time"

	"github.com/robottwo/llmscript/internal/environment"
	openai "github.com/sashabaranov/go-openai"
)

// GetLLMClient builds an OpenAI-compatible client for the configured endpoint.
// Authorization and content type headers are set by the client itself.
func GetLLMClient(config *environment.Config) *openai.Client {
	llmClientConfig := openai.DefaultConfig(config.Credential)
	if config.BaseURL != "" {
		llmClientConfig.BaseURL = config.BaseURL
	}
	llmClientConfig.HTTPClient = NewLLMHttpClient(config.Headers, config.RequestTimeout)

	return openai.NewClientWithConfig(llmClientConfig)
}

func NewLLMHttpClient(headers map[string]string, timeout time.Duration) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if len(headers) > 0 {
		transport = &headerTransport{headers: headers, base: transport}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	return t.base.RoundTrip(req)
}
