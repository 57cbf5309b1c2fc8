package response

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bookkeep/bookkeep/log"
)

// Builder generates HTTP responses.
type Builder struct {
	w          http.ResponseWriter
	r          *http.Request
	statusCode int
	headers    map[string]string
	body       interface{}
}

// WithStatus uses the given status code to build the response.
func (b *Builder) WithStatus(statusCode int) *Builder {
	b.statusCode = statusCode
	return b
}

// WithHeader adds the given HTTP header to the response.
func (b *Builder) WithHeader(key, value string) *Builder {
	b.headers[key] = value
	return b
}

// WithBody uses the given body to build the response.
func (b *Builder) WithBody(body interface{}) *Builder {
	b.body = body
	return b
}

// Write generates the HTTP response.
func (b *Builder) Write() {
	for key, value := range b.headers {
		b.w.Header().Set(key, value)
	}

	b.w.WriteHeader(b.statusCode)

	if b.body != nil {
		switch v := b.body.(type) {
		case []byte:
			if _, err := b.w.Write(v); err != nil {
				log.Debug("Failed to write response body", zap.Error(err))
			}
		case string:
			if _, err := b.w.Write([]byte(v)); err != nil {
				log.Debug("Failed to write response body", zap.Error(err))
			}
		}
	}
}

// New creates a new response builder.
func New(w http.ResponseWriter, r *http.Request) *Builder {
	return &Builder{
		w:          w,
		r:          r,
		statusCode: http.StatusOK,
		headers: map[string]string{
			"X-Content-Type-Options": "nosniff",
			"X-Frame-Options":        "DENY",
		},
	}
}
