package apiclient

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// Attempt distinguishes a request's first send from its single post-refresh retry.
type Attempt int

const (
	AttemptInitial Attempt = iota
	AttemptRetried
)

func (a Attempt) String() string {
	if a == AttemptRetried {
		return "retried"
	}
	return "initial"
}

type request struct {
	method      string
	body        []byte
	contentType string
	header      http.Header
	attempt     Attempt
	err         error
}

type RequestOption func(*request)

func newRequest(opts []RequestOption) *request {
	r := &request{method: http.MethodGet, header: http.Header{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// retry copies the request for its second and last send.
func (r *request) retry() *request {
	cp := *r
	cp.header = r.header.Clone()
	cp.attempt = AttemptRetried
	return &cp
}

func WithMethod(method string) RequestOption {
	return func(r *request) { r.method = method }
}

// WithJSON encodes v as the request body.
func WithJSON(v any) RequestOption {
	return func(r *request) {
		b, err := sonic.Marshal(v)
		if err != nil {
			r.err = fmt.Errorf("marshal request body: %w", err)
			return
		}
		r.body = b
		r.contentType = ""
	}
}

// WithBody sends raw bytes. A non-empty contentType (e.g. a multipart boundary) is kept as is.
func WithBody(b []byte, contentType string) RequestOption {
	return func(r *request) {
		r.body = b
		r.contentType = contentType
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *request) { r.header.Set(key, value) }
}
