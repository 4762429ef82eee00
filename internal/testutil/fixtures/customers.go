package fixtures

import (
	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

// CustomerBuilder provides fluent API for building test customers.
type CustomerBuilder struct {
	customer *merchantwarrior.CustomerDetails
}

// NewCustomer creates a customer builder with the required fields populated.
func NewCustomer() *CustomerBuilder {
	return &CustomerBuilder{
		customer: &merchantwarrior.CustomerDetails{
			Name:     "Test Customer",
			Country:  "AU",
			State:    "Queensland",
			City:     "Brisbane",
			Address:  "123 Test Street",
			PostCode: "4000",
		},
	}
}

func (b *CustomerBuilder) WithName(name string) *CustomerBuilder {
	b.customer.Name = name
	return b
}

func (b *CustomerBuilder) WithCountry(country string) *CustomerBuilder {
	b.customer.Country = country
	return b
}

func (b *CustomerBuilder) WithPhone(phone string) *CustomerBuilder {
	b.customer.Phone = phone
	return b
}

func (b *CustomerBuilder) WithEmail(email string) *CustomerBuilder {
	b.customer.Email = email
	return b
}

func (b *CustomerBuilder) WithIPAddress(ip string) *CustomerBuilder {
	b.customer.IPAddress = ip
	return b
}

// Build returns the constructed customer.
func (b *CustomerBuilder) Build() *merchantwarrior.CustomerDetails {
	return b.customer
}
