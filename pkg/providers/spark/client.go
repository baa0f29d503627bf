package spark

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/omnillm/omnillm/pkg/llm"
	"github.com/omnillm/omnillm/pkg/providers/internal/transport"
)

// DefaultBaseURL is the Spark HTTP API endpoint.
const DefaultBaseURL = "https://spark-api.xf-yun.com"

// Client implements the llm.Client interface for iFlytek Spark
type Client struct {
	apiKey     string
	appID      string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	// now is replaced in tests.
	now func() time.Time
}

// NewClient creates a new Spark client. When AppID and APISecret are
// both present the client signs requests; otherwise it falls back to
// bearer authentication with the API key alone.
func NewClient(config llm.ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, llm.NewAuthError("missing_api_key", "API key is required for Spark")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.EffectiveTimeout()},
		logger:     config.EffectiveLogger(),
		now:        time.Now,
	}
	if config.AppID != "" && config.APISecret != "" {
		c.appID = config.AppID
		c.apiSecret = config.APISecret
	}
	return c, nil
}

// signedAuth reports whether the client holds the full credential
// triple.
func (c *Client) signedAuth() bool {
	return c.appID != "" && c.apiSecret != ""
}

// headers builds the request headers for one call. With the credential
// triple it computes an HMAC-SHA256 signature over app_id+nonce+
// timestamp; otherwise it sends the API key as a bearer token.
func (c *Client) headers() map[string]string {
	if !c.signedAuth() {
		return map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	timestamp := fmt.Sprintf("%d", c.now().Unix())
	nonce := timestamp

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(c.appID + nonce + timestamp))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"Authorization": fmt.Sprintf(
			`api_key=%q, algorithm="hmac-sha256", headers="host date request-line", signature=%q`,
			c.apiKey, signature),
		"X-Appid":     c.appID,
		"X-Timestamp": timestamp,
		"X-Nonce":     nonce,
	}
}

// domainFor derives Spark's model domain identifier from the model
// name: the digits are extracted and prefixed with "spark-", so
// "spark-v3.5" becomes "spark-35". Models with no digits pass through
// unchanged.
func domainFor(model string) string {
	var digits strings.Builder
	for _, r := range model {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return model
	}
	return "spark-" + digits.String()
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireHeader struct {
	AppID string `json:"app_id"`
	UID   string `json:"uid"`
}

type wireChat struct {
	Domain      string  `json:"domain"`
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	MaxTokens   int     `json:"max_tokens"`
	Auditing    string  `json:"auditing"`
}

type wireRequest struct {
	Header    wireHeader `json:"header"`
	Parameter struct {
		Chat wireChat `json:"chat"`
	} `json:"parameter"`
	Payload struct {
		Message struct {
			Text   []wireMessage `json:"text"`
			Images []string      `json:"images,omitempty"`
		} `json:"message"`
	} `json:"payload"`
}

type wireResponse struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"header"`
	Payload struct {
		Choices struct {
			Text []wireMessage `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

// ChatCompletion performs a chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (string, error) {
	messages, err := llm.FilterMessages(req.Messages, c.logger)
	if err != nil {
		return "", err
	}

	var body wireRequest
	body.Header = wireHeader{
		AppID: c.appID,
		UID:   fmt.Sprintf("user_%d", c.now().Unix()),
	}
	body.Parameter.Chat = wireChat{
		Domain:      domainFor(req.Model),
		Temperature: llm.FloatOr(req.Params.Temperature, 0.7),
		TopK:        llm.IntOr(req.Params.TopK, 4),
		MaxTokens:   llm.IntOr(req.Params.MaxTokens, 2048),
		Auditing:    "default",
	}
	for _, msg := range messages {
		body.Payload.Message.Text = append(body.Payload.Message.Text, wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	body.Payload.Message.Images = req.Params.Attachments

	url := c.baseURL + "/v1/chat/completions"
	if strings.HasSuffix(c.baseURL, "/v1") {
		url = c.baseURL + "/chat/completions"
	}

	status, data, err := transport.PostJSON(ctx, c.httpClient, url, c.headers(), body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", llm.NewProviderError(status, fmt.Sprintf("spark API error: %s", string(data)))
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", llm.NewParseError(fmt.Sprintf("failed to parse spark response: %v", err))
	}
	if resp.Header.Code != 0 {
		detail := resp.Header.Message
		if detail == "" {
			detail = "unknown error"
		}
		return "", llm.NewProviderError(status, fmt.Sprintf("spark API returned error %d: %s", resp.Header.Code, detail))
	}

	text := resp.Payload.Choices.Text
	if len(text) > 0 {
		for _, msg := range text {
			if msg.Role == "assistant" {
				return msg.Content, nil
			}
		}
		return text[len(text)-1].Content, nil
	}

	// Some deployments answer in the OpenAI-compatible shape instead.
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	c.logger.Error("spark response contains no text content")
	return "", nil
}

// Provider returns the provider name
func (c *Client) Provider() string {
	return "spark"
}

// Close cleans up any resources used by the client
func (c *Client) Close() error {
	return nil
}
