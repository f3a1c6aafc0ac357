package chat

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrCredentialInvalid means the chat endpoint rejected the API key, or
	// no key was available.
	ErrCredentialInvalid = errors.New("credential invalid")
	// ErrRemoteCall covers network, timeout, quota and server failures.
	ErrRemoteCall = errors.New("chat call failed")
)

// Classify wraps err in ErrCredentialInvalid or ErrRemoteCall. Errors that
// already carry one of them are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCredentialInvalid) || errors.Is(err, ErrRemoteCall) {
		return err
	}
	if rejected(statusCode(err)) {
		return fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}
	return fmt.Errorf("%w: %v", ErrRemoteCall, err)
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func rejected(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
