package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/models"
)

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// GenerateContent sends prompt to model and returns the first candidate's text
func (c *Client) GenerateContent(ctx context.Context, model, prompt string) (*models.ModelOutput, error) {
	if prompt == "" {
		return nil, apierrors.ErrEmptyPrompt
	}
	if model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	payload, err := json.Marshal(models.NewGenerateRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.endpoint(model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(model), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.Debug().Str("model", model).Int("prompt_bytes", len(prompt)).Msg("sending generate request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("generate content with %s", model))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, c.redact(err, endpoint))
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseErrorResponse(resp.StatusCode, endpoint, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read response", endpoint, err)
	}

	output, err := parseResponse(body, model)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("model", model).
		Dur("elapsed", time.Since(start)).
		Int64("tokens", output.TotalTokens).
		Msg("generate request finished")

	return output, nil
}

// endpoint returns the request URL without the API key, safe for logs and errors
func (c *Client) endpoint(model string) string {
	return c.baseURL + fmt.Sprintf(models.GenerateContentPath, url.PathEscape(model))
}

// requestURL returns the full request URL including the key parameter
func (c *Client) requestURL(model string) string {
	return c.endpoint(model) + "?key=" + url.QueryEscape(c.apiKey)
}

// redact strips the API key from a transport error. The client reports the
// failing URL, which carries the key as a query parameter.
func (c *Client) redact(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = endpoint
	}
	if c.apiKey == "" || !strings.Contains(err.Error(), c.apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
}

// parseResponse extracts the candidate text from a generateContent body
func parseResponse(body []byte, model string) (*models.ModelOutput, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	finishReason := parsed.Get(models.PathFinishReason).String()
	if finishReason == "" {
		finishReason = parsed.Get(models.PathBlockReason).String()
	}

	text := parsed.Get(models.PathCandidateText)
	if !text.Exists() || text.String() == "" {
		return nil, apierrors.NewEmptyResponseError(model, finishReason)
	}

	name := parsed.Get(models.PathModelVersion).String()
	if name == "" {
		name = model
	}

	return &models.ModelOutput{
		Model:        name,
		Text:         text.String(),
		FinishReason: finishReason,
		TotalTokens:  parsed.Get(models.PathUsageTotal).Int(),
	}, nil
}

// parseErrorResponse converts a non-200 body into an APIError
func parseErrorResponse(statusCode int, endpoint string, body []byte) error {
	apiErr := apierrors.NewAPIErrorWithBody(statusCode, endpoint, "generate content failed", string(body))

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if msg := parsed.Get(models.PathErrorMessage).String(); msg != "" {
			apiErr.Message = msg
		}
		apiErr.Status = parsed.Get(models.PathErrorStatus).String()
		apiErr.Reason = parsed.Get(models.PathErrorReason).String()
	}

	return apiErr
}
