package merchantwarrior

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// DateTimeLayout is the format of date fields such as cardAdded
const DateTimeLayout = "2006-01-02 15:04:05"

// ResponseCodeApproved is the responseCode of a successful operation
const ResponseCodeApproved = 0

// BaseResponse carries the fields common to every response.
// Fields holds every child element of the response root by name, including
// ones that are not mapped to typed fields. Repeated elements keep the last value.
type BaseResponse struct {
	ResponseCode    int
	ResponseMessage string
	Fields          map[string]string
}

// IsApproved reports whether the remote service accepted the operation
func (r *BaseResponse) IsApproved() bool {
	return r.ResponseCode == ResponseCodeApproved
}

func (r *BaseResponse) base() *BaseResponse {
	return r
}

// PaymentResponse is returned by processCard, refundCard and queryCard
type PaymentResponse struct {
	BaseResponse
	TransactionID    string
	AuthCode         string
	AuthMessage      string
	AuthResponseCode *int // nil when the element is absent
}

func (r *PaymentResponse) mapField(name, value string) error {
	switch name {
	case "transactionID":
		r.TransactionID = value
	case "authCode":
		r.AuthCode = value
	case "authMessage":
		r.AuthMessage = value
	case "authResponseCode":
		code, err := parseInt(value)
		if err != nil {
			return err
		}
		r.AuthResponseCode = &code
	}
	return nil
}

// TokenResponse is returned by addCard and removeCard
type TokenResponse struct {
	BaseResponse
	CardID  int
	CardKey string
}

func (r *TokenResponse) mapField(name, value string) error {
	switch name {
	case "cardID":
		id, err := parseInt(value)
		if err != nil {
			return err
		}
		r.CardID = id
	case "cardKey":
		r.CardKey = value
	}
	return nil
}

// TokenCardInfoResponse is returned by cardInfo
type TokenCardInfoResponse struct {
	BaseResponse
	CardID          int
	CardName        string
	ExpiryMonth     int
	ExpiryYear      int
	CardNumberFirst string
	CardNumberLast  string
	DateAdded       time.Time
}

func (r *TokenCardInfoResponse) mapField(name, value string) (err error) {
	switch name {
	case "cardID":
		r.CardID, err = parseInt(value)
	case "cardName":
		r.CardName = value
	case "cardExpiryMonth":
		r.ExpiryMonth, err = parseInt(value)
	case "cardExpiryYear":
		r.ExpiryYear, err = parseInt(value)
	case "cardNumberFirst":
		r.CardNumberFirst = value
	case "cardNumberLast":
		r.CardNumberLast = value
	case "cardAdded":
		r.DateAdded, err = time.Parse(DateTimeLayout, strings.TrimSpace(value))
	}
	return err
}

// fieldMapper is implemented by every response variant
type fieldMapper interface {
	base() *BaseResponse
	mapField(name, value string) error
}

// decodeResponse reads a flat XML document into the response variant T.
// Every child element of the root is stored in Fields, then the common and
// variant specific mappings are applied.
func decodeResponse[T any, PT interface {
	*T
	fieldMapper
}](op string, body []byte) (*T, error) {
	result := new(T)
	resp := PT(result)
	base := resp.base()
	base.Fields = make(map[string]string)

	err := walkElements(body, func(name, value string) error {
		base.Fields[name] = value

		var err error
		switch name {
		case "responseCode":
			base.ResponseCode, err = parseInt(value)
		case "responseMessage":
			base.ResponseMessage = value
		default:
			err = resp.mapField(name, value)
		}
		if err != nil {
			return responseFormatError(op, name, fmt.Sprintf("invalid value %q", value), err)
		}
		return nil
	})
	if err != nil {
		var mwErr *Error
		if errors.As(err, &mwErr) {
			return nil, err
		}
		return nil, responseFormatError(op, "", "malformed XML", err)
	}

	return result, nil
}

// walkElements calls fn with the name and inner text of each element directly
// under the document root, in document order. Text of nested elements is
// concatenated into the child's value.
func walkElements(body []byte, fn func(name, value string) error) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		depth    int
		rootSeen bool
		name     string
		text     strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if rootSeen {
					return errors.New("multiple root elements")
				}
				rootSeen = true
			}
			depth++
			if depth == 2 {
				name = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return errors.New("content outside root element")
			}
			if depth >= 2 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 2 {
				if err := fn(name, text.String()); err != nil {
					return err
				}
			}
			depth--
		}
	}

	if !rootSeen {
		return errors.New("missing root element")
	}
	return nil
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
