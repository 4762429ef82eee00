package mocks

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// MockHTTPClient is a mock implementation of HTTPClient for testing
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)

	mu    sync.Mutex
	Calls []*http.Request
	Forms []url.Values // decoded request bodies, same order as Calls
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient(doFunc func(req *http.Request) (*http.Response, error)) *MockHTTPClient {
	return &MockHTTPClient{
		DoFunc: doFunc,
		Calls:  []*http.Request{},
		Forms:  []url.Values{},
	}
}

// NewXMLResponder returns a mock that answers every request with body and status
func NewXMLResponder(status int, body string) *MockHTTPClient {
	return NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return XMLResponse(status, body), nil
	})
}

// XMLResponse builds an http.Response carrying an XML body
func XMLResponse(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "text/xml")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

// Do captures the call and its form body, then executes the mock function
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	form := url.Values{}
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err == nil {
			form, _ = url.ParseQuery(string(raw))
			req.Body = io.NopCloser(bytes.NewReader(raw))
		}
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.Forms = append(m.Forms, form)
	m.mu.Unlock()

	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	// Default approved response
	return XMLResponse(http.StatusOK, `<mwResponse><responseCode>0</responseCode><responseMessage>Transaction approved</responseMessage></mwResponse>`), nil
}

// LastForm returns the most recent request body, nil before any call
func (m *MockHTTPClient) LastForm() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Forms) == 0 {
		return nil
	}
	return m.Forms[len(m.Forms)-1]
}

// CallCount returns the number of captured calls
func (m *MockHTTPClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Reset clears captured calls
func (m *MockHTTPClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = []*http.Request{}
	m.Forms = []url.Values{}
}
