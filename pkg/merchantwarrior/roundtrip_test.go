package merchantwarrior_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchantwarrior-go/internal/testutil/fixtures"
	"github.com/kevin07696/merchantwarrior-go/internal/testutil/sandbox"
	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

func newSandbox(t *testing.T) (*sandbox.Server, *merchantwarrior.Client) {
	t.Helper()
	srv := sandbox.New(merchantwarrior.Config{
		MerchantUUID:  "5265f8eed6a19",
		APIKey:        "ksmnwxab",
		APIPassphrase: "secret",
		TestMode:      true,
	})
	t.Cleanup(srv.Close)
	return srv, srv.NewClient()
}

func TestRoundTrip_ProcessQueryRefund(t *testing.T) {
	ctx := context.Background()
	srv, client := newSandbox(t)
	amount := decimal.RequireFromString("10.00")
	customer := fixtures.NewCustomer().WithEmail("customer@example.com").WithIPAddress("203.0.113.7").Build()

	payment, err := client.ProcessCard(ctx, amount, "AUD", "Test Product", customer, fixtures.NewCard().Build())
	require.NoError(t, err)
	require.True(t, payment.IsApproved(), payment.ResponseMessage)
	require.NotEmpty(t, payment.TransactionID)
	assert.NotEmpty(t, payment.AuthCode)
	assert.Equal(t, fixtures.IntPtr(8), payment.AuthResponseCode)

	query, err := client.QueryCard(ctx, payment.TransactionID, false)
	require.NoError(t, err)
	require.True(t, query.IsApproved(), query.ResponseMessage)
	assert.Equal(t, payment.TransactionID, query.TransactionID)
	assert.Equal(t, "10.00", query.Fields["transactionAmount"])
	assert.NotContains(t, query.Fields, "customerName")

	extended, err := client.QueryCard(ctx, payment.TransactionID, true)
	require.NoError(t, err)
	assert.Equal(t, "Test Customer", extended.Fields["customerName"])
	assert.Equal(t, "2346", extended.Fields["cardNumberLast"])

	refund, err := client.RefundCard(ctx, amount, "AUD", payment.TransactionID, decimal.RequireFromString("4.50"))
	require.NoError(t, err)
	assert.True(t, refund.IsApproved(), refund.ResponseMessage)

	refunded, ok := srv.Refunded(payment.TransactionID)
	require.True(t, ok)
	assert.Equal(t, "4.50", refunded.StringFixed(2))
}

func TestRoundTrip_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	srv, client := newSandbox(t)

	token, err := client.AddCard(ctx, "Test Customer", fixtures.MastercardNumber, 5, 2029)
	require.NoError(t, err)
	require.True(t, token.IsApproved(), token.ResponseMessage)
	assert.Positive(t, token.CardID)
	assert.NotEmpty(t, token.CardKey)
	assert.Equal(t, 1, srv.StoredCards())

	info, err := client.GetCardInfo(ctx, token.CardID, token.CardKey)
	require.NoError(t, err)
	require.True(t, info.IsApproved())
	assert.Equal(t, token.CardID, info.CardID)
	assert.Equal(t, "Test Customer", info.CardName)
	assert.Equal(t, 5, info.ExpiryMonth)
	assert.Equal(t, 29, info.ExpiryYear)
	assert.Equal(t, "512345", info.CardNumberFirst)
	assert.Equal(t, "2346", info.CardNumberLast)
	assert.False(t, info.DateAdded.IsZero())

	payment, err := client.ProcessTokenCard(ctx, decimal.RequireFromString("25.50"), "AUD", "Subscription", fixtures.NewCustomer().Build(), token.CardID, token.CardKey)
	require.NoError(t, err)
	require.True(t, payment.IsApproved(), payment.ResponseMessage)

	query, err := client.QueryCard(ctx, payment.TransactionID, true)
	require.NoError(t, err)
	assert.Equal(t, payment.TransactionID, query.TransactionID)
	assert.Equal(t, "25.50", query.Fields["transactionAmount"])

	removed, err := client.RemoveCard(ctx, token.CardID, token.CardKey)
	require.NoError(t, err)
	assert.True(t, removed.IsApproved())
	assert.Zero(t, srv.StoredCards())

	again, err := client.ProcessTokenCard(ctx, decimal.RequireFromString("25.50"), "AUD", "Subscription", fixtures.NewCustomer().Build(), token.CardID, token.CardKey)
	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeNotFound, again.ResponseCode)
}

func TestRoundTrip_WrongPassphraseIsRejected(t *testing.T) {
	srv, _ := newSandbox(t)
	client := merchantwarrior.NewClient(merchantwarrior.Config{
		MerchantUUID:  "5265f8eed6a19",
		APIKey:        "ksmnwxab",
		APIPassphrase: "not-the-passphrase",
	}, srv.ClientOptions()...)

	resp, err := client.ProcessCard(context.Background(), decimal.NewFromInt(10), "AUD", "Test Product", fixtures.NewCustomer().Build(), fixtures.NewCard().Build())

	require.NoError(t, err)
	assert.Equal(t, sandbox.CodeAuthFailed, resp.ResponseCode)
	assert.Equal(t, "Invalid hash", resp.ResponseMessage)
}
