package fixtures

import (
	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

// Sandbox card numbers
const (
	MastercardNumber = "5123456789012346"
	VisaNumber       = "4564710000000004"
)

// CardBuilder provides fluent API for building raw card details.
type CardBuilder struct {
	card *merchantwarrior.PaymentDetails
}

// NewCard creates a card builder with a Mastercard expiring 05/2029.
func NewCard() *CardBuilder {
	return &CardBuilder{
		card: &merchantwarrior.PaymentDetails{
			CardNumber:      MastercardNumber,
			CardExpiryMonth: 5,
			CardExpiryYear:  2029,
			CardName:        "Test Customer",
			CardCSC:         "123",
		},
	}
}

func (b *CardBuilder) WithNumber(number string) *CardBuilder {
	b.card.CardNumber = number
	return b
}

func (b *CardBuilder) WithExpiry(month, year int) *CardBuilder {
	b.card.CardExpiryMonth = month
	b.card.CardExpiryYear = year
	return b
}

func (b *CardBuilder) WithName(name string) *CardBuilder {
	b.card.CardName = name
	return b
}

func (b *CardBuilder) WithCSC(csc string) *CardBuilder {
	b.card.CardCSC = csc
	return b
}

// Visa switches to the sandbox Visa number.
func (b *CardBuilder) Visa() *CardBuilder {
	b.card.CardNumber = VisaNumber
	return b
}

// Build returns the constructed card.
func (b *CardBuilder) Build() *merchantwarrior.PaymentDetails {
	return b.card
}
