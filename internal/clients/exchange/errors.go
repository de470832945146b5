package exchange

import "fmt"

// BadRequestError means a request could not be built for the given
// currency pair.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return "bad request: " + e.Reason
}

// HTTPError carries a response status outside 200-299.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("exchange api returned status %d", e.Code)
}

// DecodeError means the response body did not match the expected schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode exchange response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError carries a provider-reported error payload from a 2xx body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "exchange api reported an error"
	}
	return "exchange api: " + e.Message
}
