package merchantwarrior

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// API method names and token endpoint paths
const (
	methodProcessCard = "processCard"
	methodRefundCard  = "refundCard"
	methodQueryCard   = "queryCard"

	tokenPathAddCard     = "addCard"
	tokenPathRemoveCard  = "removeCard"
	tokenPathCardInfo    = "cardInfo"
	tokenPathProcessCard = "processCard"
)

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func twoDigits(n int) string {
	return fmt.Sprintf("%02d", n)
}

// merchantFields starts every request with the account credentials
func (c *Client) merchantFields() url.Values {
	data := url.Values{}
	data.Set("merchantUUID", c.config.MerchantUUID)
	data.Set("apiKey", c.config.APIKey)
	return data
}

// setTransaction adds the amount, currency and product block
func setTransaction(data url.Values, amount decimal.Decimal, currency, product string) {
	data.Set("transactionAmount", formatAmount(amount))
	data.Set("transactionCurrency", currency)
	data.Set("transactionProduct", product)
}

// setCustomer adds the customer block. Optional fields are omitted when empty.
func setCustomer(data url.Values, customer *CustomerDetails) {
	data.Set("customerName", customer.Name)
	data.Set("customerCountry", customer.Country)
	data.Set("customerState", customer.State)
	data.Set("customerCity", customer.City)
	data.Set("customerAddress", customer.Address)
	data.Set("customerPostCode", customer.PostCode)

	if customer.Phone != "" {
		data.Set("customerPhone", customer.Phone)
	}
	if customer.Email != "" {
		data.Set("customerEmail", customer.Email)
	}
	if customer.IPAddress != "" {
		data.Set("customerIP", customer.IPAddress)
	}
}

// buildProcessCard constructs the processCard form for raw card data
func (c *Client) buildProcessCard(amount decimal.Decimal, currency, product string, customer *CustomerDetails, payment *PaymentDetails) url.Values {
	data := c.merchantFields()
	data.Set("method", methodProcessCard)
	setTransaction(data, amount, currency, product)
	setCustomer(data, customer)

	data.Set("paymentCardNumber", payment.CardNumber)
	data.Set("paymentCardExpiry", payment.Expiry())
	data.Set("paymentCardName", payment.CardName)
	data.Set("paymentCardCSC", payment.CardCSC)

	data.Set("hash", c.transactionHash(amount, currency))
	return data
}

// buildRefundCard constructs the refundCard form. The hash is computed from
// the original transaction amount, not the refund amount.
func (c *Client) buildRefundCard(amount decimal.Decimal, currency, transactionID string, refundAmount decimal.Decimal) url.Values {
	data := c.merchantFields()
	data.Set("method", methodRefundCard)
	data.Set("transactionAmount", formatAmount(amount))
	data.Set("transactionCurrency", currency)
	data.Set("transactionID", transactionID)
	data.Set("refundAmount", formatAmount(refundAmount))

	data.Set("hash", c.transactionHash(amount, currency))
	return data
}

// buildQueryCard constructs the queryCard form
func (c *Client) buildQueryCard(transactionID string, extended bool) url.Values {
	data := c.merchantFields()
	data.Set("method", methodQueryCard)
	data.Set("transactionID", transactionID)
	if extended {
		data.Set("extended", "1")
	}

	data.Set("hash", QueryHash(c.config.APIPassphrase, c.config.MerchantUUID, transactionID))
	return data
}

// buildAddCard constructs the unsigned token addCard form
func (c *Client) buildAddCard(cardName, cardNumber string, expiryMonth, expiryYear int) url.Values {
	data := c.merchantFields()
	data.Set("cardName", cardName)
	data.Set("cardNumber", cardNumber)
	data.Set("cardExpiryMonth", twoDigits(expiryMonth))
	data.Set("cardExpiryYear", twoDigits(expiryYear%100))
	return data
}

// buildCardReference constructs the unsigned form shared by removeCard and cardInfo
func (c *Client) buildCardReference(cardID int, cardKey string) url.Values {
	data := c.merchantFields()
	data.Set("cardID", strconv.Itoa(cardID))
	data.Set("cardKey", cardKey)
	return data
}

// buildProcessTokenCard constructs the token processCard form. The token
// endpoint path selects the operation, so no method field is sent.
func (c *Client) buildProcessTokenCard(amount decimal.Decimal, currency, product string, customer *CustomerDetails, cardID int, cardKey string) url.Values {
	data := c.merchantFields()
	setTransaction(data, amount, currency, product)
	setCustomer(data, customer)

	data.Set("paymentCardID", strconv.Itoa(cardID))
	data.Set("paymentCardKey", cardKey)

	data.Set("hash", c.transactionHash(amount, currency))
	return data
}

func (c *Client) transactionHash(amount decimal.Decimal, currency string) string {
	return TransactionHash(c.config.APIPassphrase, c.config.MerchantUUID, amount, currency)
}
