// Package merchantwarrior is a client for the Merchant Warrior payment API.
// It builds signed form-encoded requests for card payments, refunds,
// queries and card tokenization, and decodes the XML responses.
package merchantwarrior

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/merchantwarrior-go/pkg/httpclient"
	"github.com/kevin07696/merchantwarrior-go/pkg/logging"
)

// Endpoint bases per environment
const (
	LivePaymentURL = "https://api.merchantwarrior.com/post/"
	TestPaymentURL = "https://base.merchantwarrior.com/post/"
	LiveTokenURL   = "https://api.merchantwarrior.com/token/"
	TestTokenURL   = "https://base.merchantwarrior.com/token/"
)

// HTTPClient is the transport used to reach the API.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives one observation per operation
type Recorder interface {
	RecordRequest(operation, outcome string, elapsed time.Duration)
}

// Outcomes passed to Recorder
const (
	OutcomeApproved            = "approved"
	OutcomeDeclined            = "declined"
	OutcomeInvalidArgument     = "invalid_argument"
	OutcomeTransportError      = "transport_error"
	OutcomeResponseFormatError = "response_format_error"
)

// Config holds merchant credentials and the environment flag
type Config struct {
	MerchantUUID  string
	APIKey        string
	APIPassphrase string // used for signing only, never transmitted
	TestMode      bool   // route to the sandbox endpoints
}

// Client is safe for concurrent use. Its configuration is fixed at construction.
type Client struct {
	config     Config
	paymentURL string
	tokenURL   string
	httpClient HTTPClient
	logger     logging.Logger
	recorder   Recorder
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts, proxies and TLS settings are
// configured there.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger. The client only emits debug entries and never
// logs card data, card keys or signatures.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRecorder sets a per-request metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(c *Client) {
		c.recorder = recorder
	}
}

// WithBaseURLs overrides the payment and token endpoint bases. The token
// base must end with a slash; operation paths are appended to it.
func WithBaseURLs(paymentURL, tokenURL string) Option {
	return func(c *Client) {
		c.paymentURL = paymentURL
		c.tokenURL = tokenURL
	}
}

// NewClient creates a client for the given merchant account
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		config:     cfg,
		paymentURL: LivePaymentURL,
		tokenURL:   LiveTokenURL,
		logger:     logging.Nop(),
	}
	if cfg.TestMode {
		c.paymentURL = TestPaymentURL
		c.tokenURL = TestTokenURL
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = httpclient.NewHTTPClient(httpclient.GatewayClientConfig(), 0)
	}
	return c
}

// PaymentURL returns the payment endpoint in use
func (c *Client) PaymentURL() string {
	return c.paymentURL
}

// TokenURL returns the token endpoint base in use
func (c *Client) TokenURL() string {
	return c.tokenURL
}

// ProcessCard charges a card using raw card details
func (c *Client) ProcessCard(ctx context.Context, amount decimal.Decimal, currency, product string, customer *CustomerDetails, payment *PaymentDetails) (*PaymentResponse, error) {
	op := methodProcessCard
	start := time.Now()

	switch {
	case currency == "":
		return nil, c.reject(op, "transactionCurrency", start)
	case product == "":
		return nil, c.reject(op, "transactionProduct", start)
	case customer == nil:
		return nil, c.reject(op, "customerDetails", start)
	case payment == nil:
		return nil, c.reject(op, "paymentDetails", start)
	}

	return postPayment(ctx, c, op, c.paymentURL, c.buildProcessCard(amount, currency, product, customer, payment), start)
}

// RefundCard refunds refundAmount of a previous transaction. amount and
// currency are those of the original transaction and are what gets signed.
func (c *Client) RefundCard(ctx context.Context, amount decimal.Decimal, currency, transactionID string, refundAmount decimal.Decimal) (*PaymentResponse, error) {
	op := methodRefundCard
	start := time.Now()

	switch {
	case currency == "":
		return nil, c.reject(op, "transactionCurrency", start)
	case transactionID == "":
		return nil, c.reject(op, "transactionID", start)
	}

	return postPayment(ctx, c, op, c.paymentURL, c.buildRefundCard(amount, currency, transactionID, refundAmount), start)
}

// QueryCard looks up a previous transaction
func (c *Client) QueryCard(ctx context.Context, transactionID string, extended bool) (*PaymentResponse, error) {
	op := methodQueryCard
	start := time.Now()

	if transactionID == "" {
		return nil, c.reject(op, "transactionID", start)
	}

	return postPayment(ctx, c, op, c.paymentURL, c.buildQueryCard(transactionID, extended), start)
}

// AddCard stores a card and returns its token
func (c *Client) AddCard(ctx context.Context, cardName, cardNumber string, expiryMonth, expiryYear int) (*TokenResponse, error) {
	op := tokenPathAddCard
	start := time.Now()

	switch {
	case cardName == "":
		return nil, c.reject(op, "cardName", start)
	case cardNumber == "":
		return nil, c.reject(op, "cardNumber", start)
	}

	return post[TokenResponse](ctx, c, op, c.tokenURL+tokenPathAddCard, c.buildAddCard(cardName, cardNumber, expiryMonth, expiryYear), start)
}

// RemoveCard deletes a stored card
func (c *Client) RemoveCard(ctx context.Context, cardID int, cardKey string) (*TokenResponse, error) {
	op := tokenPathRemoveCard
	start := time.Now()

	if cardKey == "" {
		return nil, c.reject(op, "cardKey", start)
	}

	return post[TokenResponse](ctx, c, op, c.tokenURL+tokenPathRemoveCard, c.buildCardReference(cardID, cardKey), start)
}

// GetCardInfo returns the details of a stored card
func (c *Client) GetCardInfo(ctx context.Context, cardID int, cardKey string) (*TokenCardInfoResponse, error) {
	op := tokenPathCardInfo
	start := time.Now()

	if cardKey == "" {
		return nil, c.reject(op, "cardKey", start)
	}

	return post[TokenCardInfoResponse](ctx, c, op, c.tokenURL+tokenPathCardInfo, c.buildCardReference(cardID, cardKey), start)
}

// ProcessTokenCard charges a stored card identified by cardID and cardKey
func (c *Client) ProcessTokenCard(ctx context.Context, amount decimal.Decimal, currency, product string, customer *CustomerDetails, cardID int, cardKey string) (*PaymentResponse, error) {
	op := "token/" + tokenPathProcessCard
	start := time.Now()

	switch {
	case currency == "":
		return nil, c.reject(op, "transactionCurrency", start)
	case product == "":
		return nil, c.reject(op, "transactionProduct", start)
	case customer == nil:
		return nil, c.reject(op, "customerDetails", start)
	case cardKey == "":
		return nil, c.reject(op, "cardKey", start)
	}

	return postPayment(ctx, c, op, c.tokenURL+tokenPathProcessCard, c.buildProcessTokenCard(amount, currency, product, customer, cardID, cardKey), start)
}

func (c *Client) reject(op, field string, start time.Time) error {
	err := invalidArgument(op, field)
	c.record(op, OutcomeInvalidArgument, start)
	return err
}

func postPayment(ctx context.Context, c *Client, op, endpoint string, form url.Values, start time.Time) (*PaymentResponse, error) {
	return post[PaymentResponse](ctx, c, op, endpoint, form, start)
}

// post sends one form-encoded request and decodes the body into T
func post[T any, PT interface {
	*T
	fieldMapper
}](ctx context.Context, c *Client, op, endpoint string, form url.Values, start time.Time) (*T, error) {
	requestID := uuid.NewString()

	body, err := c.send(ctx, op, endpoint, requestID, form)
	if err != nil {
		c.record(op, OutcomeTransportError, start)
		return nil, err
	}

	result, err := decodeResponse[T, PT](op, body)
	if err != nil {
		c.logger.Debug("Merchant Warrior response could not be decoded",
			logging.String("operation", op),
			logging.String("request_id", requestID),
			logging.Err(err),
		)
		c.record(op, OutcomeResponseFormatError, start)
		return nil, err
	}

	base := PT(result).base()
	outcome := OutcomeApproved
	if !base.IsApproved() {
		outcome = OutcomeDeclined
	}
	c.logger.Debug("Merchant Warrior response decoded",
		logging.String("operation", op),
		logging.String("request_id", requestID),
		logging.Int("response_code", base.ResponseCode),
		logging.Duration("elapsed", time.Since(start)),
	)
	c.record(op, outcome, start)

	return result, nil
}

// send performs the HTTP round trip and returns the raw body
func (c *Client) send(ctx context.Context, op, endpoint, requestID string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, transportError(op, 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("X-Request-ID", requestID)

	c.logger.Debug("Sending Merchant Warrior request",
		logging.String("operation", op),
		logging.String("endpoint", endpoint),
		logging.String("request_id", requestID),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Merchant Warrior request failed",
			logging.String("operation", op),
			logging.String("request_id", requestID),
			logging.Err(err),
		)
		return nil, transportError(op, 0, "failed to send request", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(op, httpResp.StatusCode, "failed to read response", err)
	}

	c.logger.Debug("Received Merchant Warrior response",
		logging.String("operation", op),
		logging.String("request_id", requestID),
		logging.Int("status_code", httpResp.StatusCode),
		logging.Int("body_length", len(body)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, transportError(op, httpResp.StatusCode, fmt.Sprintf("unexpected HTTP status %d", httpResp.StatusCode), nil)
	}

	return body, nil
}

func (c *Client) record(op, outcome string, start time.Time) {
	if c.recorder != nil {
		c.recorder.RecordRequest(op, outcome, time.Since(start))
	}
}
