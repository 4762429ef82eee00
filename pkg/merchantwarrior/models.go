package merchantwarrior

// CustomerDetails describes the card holder sent with a payment.
// Name, Country, State, City, Address and PostCode are required by the
// remote service; Phone, Email and IPAddress are sent only when non-empty.
type CustomerDetails struct {
	Name      string
	Country   string
	State     string
	City      string
	Address   string
	PostCode  string
	Phone     string
	Email     string
	IPAddress string
}

// PaymentDetails holds raw card data for a single payment. It is never
// logged or retained by the client.
type PaymentDetails struct {
	CardNumber      string
	CardExpiryMonth int // 1-12
	CardExpiryYear  int // 2 or 4 digits
	CardName        string
	CardCSC         string
}

// Expiry returns the MMYY form used by paymentCardExpiry
func (p *PaymentDetails) Expiry() string {
	return twoDigits(p.CardExpiryMonth) + twoDigits(p.CardExpiryYear%100)
}
