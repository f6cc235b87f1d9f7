package registrar

import (
	"errors"

	"zorgsites/internal/upstream"
)

const serviceName = "registrar"

func errorFromResponse(status int, detail []byte) error {
	message := "registrar request failed"
	if status == 409 {
		message = "domain is not available"
	}
	err := upstream.FromStatus(serviceName, status, message)
	// Keep the raw registrar message reachable via Unwrap for operator logs,
	// never for API responses.
	if len(detail) > 0 {
		err.Underlying = errors.New(string(detail))
	}
	return err
}

func errorBadData(cause error) error {
	return upstream.New(upstream.CategoryBadData, serviceName, "malformed registrar response", cause)
}

func transportError(cause error) error {
	return upstream.FromTransport(serviceName, cause)
}
