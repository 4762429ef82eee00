package sandbox

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strconv"
)

type element struct {
	name  string
	value string
}

// response is an ordered list of child elements under mwResponse
type response struct {
	elements []element
}

func approved(message string) *response {
	return newResponse(CodeApproved, message)
}

func failure(code int, message string) *response {
	return newResponse(code, message)
}

func newResponse(code int, message string) *response {
	resp := &response{}
	resp.add("responseCode", strconv.Itoa(code))
	resp.add("responseMessage", message)
	return resp
}

func (r *response) add(name, value string) {
	r.elements = append(r.elements, element{name: name, value: value})
}

func (r *response) write(w http.ResponseWriter) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<mwResponse>")
	for _, el := range r.elements {
		buf.WriteString("<" + el.name + ">")
		_ = xml.EscapeText(&buf, []byte(el.value))
		buf.WriteString("</" + el.name + ">")
	}
	buf.WriteString("</mwResponse>")

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
