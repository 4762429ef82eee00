package sandbox_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchantwarrior-go/internal/testutil/fixtures"
	"github.com/kevin07696/merchantwarrior-go/internal/testutil/sandbox"
	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

var testConfig = merchantwarrior.Config{
	MerchantUUID:  "5265f8eed6a19",
	APIKey:        "ksmnwxab",
	APIPassphrase: "secret",
	TestMode:      true,
}

func newServer(t *testing.T) *sandbox.Server {
	t.Helper()
	srv := sandbox.New(testConfig)
	t.Cleanup(srv.Close)
	return srv
}

func postForm(t *testing.T, endpoint string, form url.Values) string {
	t.Helper()
	resp, err := http.PostForm(endpoint, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestServer_RejectsInvalidHash(t *testing.T) {
	srv := newServer(t)

	body := postForm(t, srv.PaymentURL(), url.Values{
		"method":              {"processCard"},
		"merchantUUID":        {testConfig.MerchantUUID},
		"apiKey":              {testConfig.APIKey},
		"transactionAmount":   {"10.00"},
		"transactionCurrency": {"AUD"},
		"paymentCardNumber":   {fixtures.MastercardNumber},
		"paymentCardExpiry":   {"0529"},
		"hash":                {"00000000000000000000000000000000"},
	})

	assert.Contains(t, body, "<responseCode>-1</responseCode>")
	assert.Contains(t, body, "<responseMessage>Invalid hash</responseMessage>")
}

func TestServer_RejectsUnknownMerchant(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig
	cfg.APIKey = "wrong"
	client := merchantwarrior.NewClient(cfg, srv.ClientOptions()...)

	resp, err := client.QueryCard(context.Background(), "TX1", false)

	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeAuthFailed, resp.ResponseCode)
	assert.False(t, resp.IsApproved())
}

func TestServer_UnsupportedMethod(t *testing.T) {
	srv := newServer(t)

	body := postForm(t, srv.PaymentURL(), url.Values{
		"method":       {"voidCard"},
		"merchantUUID": {testConfig.MerchantUUID},
		"apiKey":       {testConfig.APIKey},
	})

	assert.Contains(t, body, "<responseCode>-2</responseCode>")
}

func TestServer_FailNext(t *testing.T) {
	srv := newServer(t)
	client := srv.NewClient()
	srv.FailNext(http.StatusServiceUnavailable)

	_, err := client.QueryCard(context.Background(), "TX1", false)

	require.Error(t, err)
	assert.True(t, merchantwarrior.IsTransportError(err))
	var mwErr *merchantwarrior.Error
	require.ErrorAs(t, err, &mwErr)
	assert.Equal(t, http.StatusServiceUnavailable, mwErr.StatusCode)

	resp, err := client.QueryCard(context.Background(), "TX1", false)
	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeNotFound, resp.ResponseCode)
	assert.Equal(t, 2, srv.Requests())
}

func TestServer_DeclinesByAmount(t *testing.T) {
	srv := newServer(t)
	client := srv.NewClient()

	resp, err := client.ProcessCard(context.Background(), decimal.RequireFromString("10.05"), "AUD", "Test Product",
		fixtures.NewCustomer().Build(), fixtures.NewCard().Build())

	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeDeclined, resp.ResponseCode)
	assert.Equal(t, fixtures.IntPtr(5), resp.AuthResponseCode)
	assert.Equal(t, "Do not honour", resp.AuthMessage)
}

func TestServer_RefundLimits(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := srv.NewClient()
	amount := decimal.RequireFromString("50.00")

	payment, err := client.ProcessCard(ctx, amount, "AUD", "Test Product", fixtures.NewCustomer().Build(), fixtures.NewCard().Visa().Build())
	require.NoError(t, err)
	require.True(t, payment.IsApproved())

	tests := []struct {
		name     string
		amount   string
		refund   string
		wantCode int
	}{
		{name: "partial refund", amount: "50.00", refund: "20.00", wantCode: sandbox.CodeApproved},
		{name: "second partial refund", amount: "50.00", refund: "30.00", wantCode: sandbox.CodeApproved},
		{name: "over refund", amount: "50.00", refund: "0.01", wantCode: sandbox.CodeValidationFailed},
		{name: "signed with refund amount", amount: "10.00", refund: "10.00", wantCode: sandbox.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.RefundCard(ctx, decimal.RequireFromString(tt.amount), "AUD", payment.TransactionID, decimal.RequireFromString(tt.refund))

			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.ResponseCode, resp.ResponseMessage)
		})
	}

	refunded, ok := srv.Refunded(payment.TransactionID)
	require.True(t, ok)
	assert.True(t, refunded.Equal(amount), "refunded %s", refunded)
}

func TestServer_CardInfoUsesClock(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	added := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	srv.SetClock(func() time.Time { return added })
	client := srv.NewClient()

	token, err := client.AddCard(ctx, "Test Customer", fixtures.VisaNumber, 7, 2031)
	require.NoError(t, err)
	require.True(t, token.IsApproved())

	info, err := client.GetCardInfo(ctx, token.CardID, token.CardKey)

	require.NoError(t, err)
	assert.Equal(t, added, info.DateAdded)
	assert.Equal(t, 7, info.ExpiryMonth)
	assert.Equal(t, 31, info.ExpiryYear)
	assert.Equal(t, "456471", info.CardNumberFirst)
	assert.Equal(t, "0004", info.CardNumberLast)
}

func TestServer_UnknownCard(t *testing.T) {
	srv := newServer(t)
	client := srv.NewClient()

	resp, err := client.RemoveCard(context.Background(), 42, "missing")

	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeNotFound, resp.ResponseCode)
}
