// Package sandbox runs an in-process Merchant Warrior simulator for tests.
// It verifies request signatures with the client's own signing code and
// keeps transactions and stored cards in memory.
package sandbox

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

// Simulator response codes
const (
	CodeApproved         = 0
	CodeAuthFailed       = -1
	CodeValidationFailed = -2
	CodeNotFound         = -3
	CodeDeclined         = 5
)

// DeclineCents makes any payment whose amount ends in .05 decline
const DeclineCents = 5

const firstCardID = 1000

type transaction struct {
	id       string
	amount   decimal.Decimal
	currency string
	product  string
	customer string
	cardLast string
	authCode string
	refunded decimal.Decimal
}

type storedCard struct {
	id          int
	key         string
	name        string
	number      string
	expiryMonth string
	expiryYear  string
	added       time.Time
}

// Server is an httptest server speaking the Merchant Warrior wire format
type Server struct {
	*httptest.Server

	config merchantwarrior.Config
	now    func() time.Time

	mu           sync.Mutex
	transactions map[string]*transaction
	cards        map[int]*storedCard
	nextCardID   int
	failures     []int
	requests     int
}

// New starts a simulator that accepts the credentials in cfg. Call Close when done.
func New(cfg merchantwarrior.Config) *Server {
	s := &Server{
		config:       cfg,
		now:          time.Now,
		transactions: make(map[string]*transaction),
		cards:        make(map[int]*storedCard),
		nextCardID:   firstCardID,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /post/", s.handlePayment)
	mux.HandleFunc("POST /token/{operation}", s.handleToken)
	s.Server = httptest.NewServer(s.countRequests(mux))
	return s
}

// PaymentURL is the payment endpoint of the simulator
func (s *Server) PaymentURL() string {
	return s.URL + "/post/"
}

// TokenURL is the token endpoint base of the simulator
func (s *Server) TokenURL() string {
	return s.URL + "/token/"
}

// ClientOptions points a merchantwarrior.Client at the simulator
func (s *Server) ClientOptions() []merchantwarrior.Option {
	return []merchantwarrior.Option{
		merchantwarrior.WithBaseURLs(s.PaymentURL(), s.TokenURL()),
		merchantwarrior.WithHTTPClient(s.Client()),
	}
}

// NewClient returns a client configured for the simulator
func (s *Server) NewClient(opts ...merchantwarrior.Option) *merchantwarrior.Client {
	return merchantwarrior.NewClient(s.config, append(s.ClientOptions(), opts...)...)
}

// FailNext makes the next request answer with the given HTTP status and an empty body
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, status)
}

// SetClock replaces the time source used for cardAdded
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Requests returns the number of requests received
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Refunded returns the total refunded so far for a transaction
func (s *Server) Refunded(transactionID string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[transactionID]
	if !ok {
		return decimal.Zero, false
	}
	return tx.refunded, true
}

// StoredCards returns the number of cards currently stored
func (s *Server) StoredCards() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		var status int
		if len(s.failures) > 0 {
			status = s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if resp, ok := s.authenticate(r); !ok {
		resp.write(w)
		return
	}

	var resp *response
	switch method := r.PostForm.Get("method"); method {
	case "processCard":
		resp = s.processCard(r)
	case "refundCard":
		resp = s.refundCard(r)
	case "queryCard":
		resp = s.queryCard(r)
	default:
		resp = failure(CodeValidationFailed, fmt.Sprintf("unsupported method %q", method))
	}
	resp.write(w)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if resp, ok := s.authenticate(r); !ok {
		resp.write(w)
		return
	}

	var resp *response
	switch operation := r.PathValue("operation"); operation {
	case "addCard":
		resp = s.addCard(r)
	case "removeCard":
		resp = s.removeCard(r)
	case "cardInfo":
		resp = s.cardInfo(r)
	case "processCard":
		resp = s.processTokenCard(r)
	default:
		http.NotFound(w, r)
		return
	}
	resp.write(w)
}

func (s *Server) authenticate(r *http.Request) (*response, bool) {
	if r.PostForm.Get("merchantUUID") != s.config.MerchantUUID || r.PostForm.Get("apiKey") != s.config.APIKey {
		return failure(CodeAuthFailed, "Invalid merchant credentials"), false
	}
	return nil, true
}

// verifyAmountHash checks the amount-based signature of a payment form
func (s *Server) verifyAmountHash(r *http.Request) (decimal.Decimal, *response) {
	amount, err := decimal.NewFromString(r.PostForm.Get("transactionAmount"))
	if err != nil {
		return decimal.Zero, failure(CodeValidationFailed, "Invalid transactionAmount")
	}
	currency := r.PostForm.Get("transactionCurrency")
	if currency == "" {
		return decimal.Zero, failure(CodeValidationFailed, "Missing transactionCurrency")
	}
	if !merchantwarrior.VerifyTransactionHash(s.config.APIPassphrase, s.config.MerchantUUID, amount, currency, r.PostForm.Get("hash")) {
		return decimal.Zero, failure(CodeAuthFailed, "Invalid hash")
	}
	return amount, nil
}

func (s *Server) processCard(r *http.Request) *response {
	amount, fail := s.verifyAmountHash(r)
	if fail != nil {
		return fail
	}
	number := r.PostForm.Get("paymentCardNumber")
	if number == "" || len(r.PostForm.Get("paymentCardExpiry")) != 4 {
		return failure(CodeValidationFailed, "Invalid card details")
	}
	return s.charge(r, amount, number)
}

func (s *Server) processTokenCard(r *http.Request) *response {
	amount, fail := s.verifyAmountHash(r)
	if fail != nil {
		return fail
	}

	s.mu.Lock()
	card, ok := s.lookupCard(r.PostForm.Get("paymentCardID"), r.PostForm.Get("paymentCardKey"))
	s.mu.Unlock()
	if !ok {
		return failure(CodeNotFound, "Card not found")
	}
	return s.charge(r, amount, card.number)
}

// charge records a new transaction, declining amounts ending in DeclineCents
func (s *Server) charge(r *http.Request, amount decimal.Decimal, cardNumber string) *response {
	if amount.Mul(decimal.NewFromInt(100)).Mod(decimal.NewFromInt(100)).IntPart() == DeclineCents {
		resp := failure(CodeDeclined, "Transaction declined")
		resp.add("transactionID", uuid.NewString())
		resp.add("authResponseCode", "05")
		resp.add("authMessage", "Do not honour")
		return resp
	}

	tx := &transaction{
		id:       uuid.NewString(),
		amount:   amount,
		currency: r.PostForm.Get("transactionCurrency"),
		product:  r.PostForm.Get("transactionProduct"),
		customer: r.PostForm.Get("customerName"),
		cardLast: lastFour(cardNumber),
		authCode: strings.ToUpper(uuid.NewString()[:6]),
		refunded: decimal.Zero,
	}

	s.mu.Lock()
	s.transactions[tx.id] = tx
	s.mu.Unlock()

	resp := approved("Transaction approved")
	resp.add("transactionID", tx.id)
	resp.add("authCode", tx.authCode)
	resp.add("authMessage", "Approved")
	resp.add("authResponseCode", "08")
	return resp
}

func (s *Server) refundCard(r *http.Request) *response {
	// the signature covers the original transaction amount
	amount, fail := s.verifyAmountHash(r)
	if fail != nil {
		return fail
	}
	refund, err := decimal.NewFromString(r.PostForm.Get("refundAmount"))
	if err != nil || !refund.IsPositive() {
		return failure(CodeValidationFailed, "Invalid refundAmount")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[r.PostForm.Get("transactionID")]
	if !ok {
		return failure(CodeNotFound, "Transaction not found")
	}
	if !tx.amount.Equal(amount) || tx.currency != r.PostForm.Get("transactionCurrency") {
		return failure(CodeValidationFailed, "Amount does not match original transaction")
	}
	if tx.refunded.Add(refund).GreaterThan(tx.amount) {
		return failure(CodeValidationFailed, "Refund exceeds transaction amount")
	}
	tx.refunded = tx.refunded.Add(refund)

	resp := approved("Transaction approved")
	resp.add("transactionID", uuid.NewString())
	resp.add("authCode", tx.authCode)
	return resp
}

func (s *Server) queryCard(r *http.Request) *response {
	transactionID := r.PostForm.Get("transactionID")
	if !merchantwarrior.VerifyQueryHash(s.config.APIPassphrase, s.config.MerchantUUID, transactionID, r.PostForm.Get("hash")) {
		return failure(CodeAuthFailed, "Invalid hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[transactionID]
	if !ok {
		return failure(CodeNotFound, "Transaction not found")
	}

	resp := approved("Transaction approved")
	resp.add("transactionID", tx.id)
	resp.add("authCode", tx.authCode)
	resp.add("transactionAmount", tx.amount.StringFixed(2))
	resp.add("transactionCurrency", tx.currency)
	if r.PostForm.Get("extended") == "1" {
		resp.add("transactionProduct", tx.product)
		resp.add("customerName", tx.customer)
		resp.add("cardNumberLast", tx.cardLast)
		resp.add("refundedAmount", tx.refunded.StringFixed(2))
	}
	return resp
}

func (s *Server) addCard(r *http.Request) *response {
	name := r.PostForm.Get("cardName")
	number := r.PostForm.Get("cardNumber")
	month := r.PostForm.Get("cardExpiryMonth")
	year := r.PostForm.Get("cardExpiryYear")
	if name == "" || len(number) < 10 || len(month) != 2 || len(year) != 2 {
		return failure(CodeValidationFailed, "Invalid card details")
	}

	s.mu.Lock()
	card := &storedCard{
		id:          s.nextCardID,
		key:         strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		name:        name,
		number:      number,
		expiryMonth: month,
		expiryYear:  year,
		added:       s.now(),
	}
	s.cards[card.id] = card
	s.nextCardID++
	s.mu.Unlock()

	resp := approved("Operation successful")
	resp.add("cardID", fmt.Sprint(card.id))
	resp.add("cardKey", card.key)
	return resp
}

func (s *Server) removeCard(r *http.Request) *response {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.lookupCard(r.PostForm.Get("cardID"), r.PostForm.Get("cardKey"))
	if !ok {
		return failure(CodeNotFound, "Card not found")
	}
	delete(s.cards, card.id)
	return approved("Operation successful")
}

func (s *Server) cardInfo(r *http.Request) *response {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.lookupCard(r.PostForm.Get("cardID"), r.PostForm.Get("cardKey"))
	if !ok {
		return failure(CodeNotFound, "Card not found")
	}

	resp := approved("Operation successful")
	resp.add("cardID", fmt.Sprint(card.id))
	resp.add("cardName", card.name)
	resp.add("cardExpiryMonth", card.expiryMonth)
	resp.add("cardExpiryYear", card.expiryYear)
	resp.add("cardNumberFirst", card.number[:6])
	resp.add("cardNumberLast", lastFour(card.number))
	resp.add("cardAdded", card.added.Format(merchantwarrior.DateTimeLayout))
	return resp
}

// lookupCard must be called with s.mu held
func (s *Server) lookupCard(id, key string) (*storedCard, bool) {
	for _, card := range s.cards {
		if fmt.Sprint(card.id) == id && card.key == key {
			return card, true
		}
	}
	return nil, false
}

func lastFour(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
