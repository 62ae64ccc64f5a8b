package domain

// Envelope is the {code, message, data} wrapper every backend response uses.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Success codes. The accident service answers 0, the obstacle service 200.
const (
	CodeOK     = 0
	CodeHTTPOK = 200
)

// OK reports whether the envelope code signals success.
func (e Envelope[T]) OK() bool {
	return e.Code == CodeOK || e.Code == CodeHTTPOK
}
