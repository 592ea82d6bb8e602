package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/gin-gonic/gin"
)

// RequestBuilder builds one request against a gin engine
type RequestBuilder struct {
	method  string
	path    string
	body    interface{}
	headers map[string]string
	query   url.Values
}

func NewRequest(method, path string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		path:    path,
		headers: make(map[string]string),
		query:   url.Values{},
	}
}

func GET(path string) *RequestBuilder {
	return NewRequest(http.MethodGet, path)
}

func POST(path string) *RequestBuilder {
	return NewRequest(http.MethodPost, path)
}

func (rb *RequestBuilder) WithJSON(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

func (rb *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	rb.query.Add(key, value)
	return rb
}

func (rb *RequestBuilder) WithTraceID(traceID string) *RequestBuilder {
	return rb.WithHeader("X-Trace-ID", traceID)
}

// Do serves the request on engine and records the reply
func (rb *RequestBuilder) Do(engine *gin.Engine) *ResponseHelper {
	target := rb.path
	if len(rb.query) > 0 {
		target += "?" + rb.query.Encode()
	}

	var body []byte
	if rb.body != nil {
		body, _ = json.Marshal(rb.body)
	}
	req := httptest.NewRequest(rb.method, target, bytes.NewReader(body))
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return &ResponseHelper{Recorder: w}
}

// ResponseHelper reads a recorded reply
type ResponseHelper struct {
	Recorder *httptest.ResponseRecorder
}

func (rh *ResponseHelper) Status() int {
	return rh.Recorder.Code
}

func (rh *ResponseHelper) Body() string {
	return rh.Recorder.Body.String()
}

func (rh *ResponseHelper) JSON(v interface{}) error {
	return json.Unmarshal(rh.Recorder.Body.Bytes(), v)
}

func (rh *ResponseHelper) Header(key string) string {
	return rh.Recorder.Header().Get(key)
}
