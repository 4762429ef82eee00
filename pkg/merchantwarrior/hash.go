package merchantwarrior

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionHash calculates the signature for processCard and refundCard.
// hash = md5(lower(passphrase + merchantUUID + amount(2dp) + currency))
func TransactionHash(passphrase, merchantUUID string, amount decimal.Decimal, currency string) string {
	return md5Hex(passphrase + merchantUUID + formatAmount(amount) + currency)
}

// QueryHash calculates the signature for queryCard.
// hash = md5(lower(passphrase + merchantUUID + transactionID))
func QueryHash(passphrase, merchantUUID, transactionID string) string {
	return md5Hex(passphrase + merchantUUID + transactionID)
}

// VerifyTransactionHash validates an amount-based signature
func VerifyTransactionHash(passphrase, merchantUUID string, amount decimal.Decimal, currency, hash string) bool {
	expected := TransactionHash(passphrase, merchantUUID, amount, currency)
	return constantTimeEqual(expected, strings.ToLower(hash))
}

// VerifyQueryHash validates a query signature
func VerifyQueryHash(passphrase, merchantUUID, transactionID, hash string) bool {
	expected := QueryHash(passphrase, merchantUUID, transactionID)
	return constantTimeEqual(expected, strings.ToLower(hash))
}

// md5Hex lowercases the whole plaintext before hashing
func md5Hex(plaintext string) string {
	sum := md5.Sum([]byte(strings.ToLower(plaintext)))
	return hex.EncodeToString(sum[:])
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
