package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for gates that reject a request before translation.
var (
	ErrNoTextDetected = errors.New("no text found in the image")
	ErrNoJapaneseText = errors.New("no Japanese text found in the image")
)

// Service identifies the external collaborator that failed.
type Service string

const (
	ServiceOCR        Service = "ocr"
	ServiceTranslate  Service = "translate"
	ServiceCompletion Service = "completion"
)

// ErrorKind classifies an external failure from its message.
type ErrorKind string

const (
	KindQuota   ErrorKind = "quota"
	KindAuth    ErrorKind = "auth"
	KindGeneric ErrorKind = "generic"
)

// ExternalError wraps a failure from one of the external AI services.
type ExternalError struct {
	Service Service
	Kind    ErrorKind
	Err     error
}

// NewExternalError wraps err and classifies it by message sniffing.
func NewExternalError(service Service, err error) *ExternalError {
	return &ExternalError{Service: service, Kind: classifyError(err), Err: err}
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s service error (%s): %v", e.Service, e.Kind, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// UserMessage returns the message exposed to API clients. Quota and
// credential failures get a specific message; everything else stays
// generic so internals do not leak.
func (e *ExternalError) UserMessage() string {
	switch e.Kind {
	case KindQuota:
		return "API quota exceeded. Please try again later."
	case KindAuth:
		return "Authentication error. Please contact support."
	default:
		return "Translation failed"
	}
}

func classifyError(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"):
		return KindQuota
	case strings.Contains(msg, "credential"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthenticated"):
		return KindAuth
	default:
		return KindGeneric
	}
}
