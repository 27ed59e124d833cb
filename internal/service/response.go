package service

// Response is the envelope every handler returns to the transport layer.
type Response[T any] struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Response[T] {
	return Response[T]{Succeeded: true, Data: data}
}

// Fail builds an unsuccessful envelope carrying data (usually the zero value) and message.
func Fail[T any](data T, message string) Response[T] {
	return Response[T]{Succeeded: false, Message: message, Data: data}
}
