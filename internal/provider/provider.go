package provider

import (
	"context"
	"fmt"

	"flzt_checkin/internal/model"
)

// Provider talks to the remote check-in service. Every method decodes the
// response into typed values; callers never see raw JSON except through
// ResponseError.Body.
type Provider interface {
	Name() string

	Login(ctx context.Context, creds model.Credentials) (token string, err error)
	// CheckIn returns a CheckInFailure result, not an error, when the service
	// answers with a shape it does not recognize as done.
	CheckIn(ctx context.Context, token string) (model.CheckInResult, error)
	UserInfo(ctx context.Context, token string) (model.UserInfo, error)
	ConvertTraffic(ctx context.Context, token string, mb int64) error
}

const maxBodyInError = 512

// ResponseError is returned when the service answered but not with the
// expected shape.
type ResponseError struct {
	Op     string
	Status int
	Body   string
	Reason string
}

func NewResponseError(op string, status int, body []byte, reason string) *ResponseError {
	s := string(body)
	if r := []rune(s); len(r) > maxBodyInError {
		s = string(r[:maxBodyInError]) + "..."
	}
	return &ResponseError{Op: op, Status: status, Body: s, Reason: reason}
}

func (e *ResponseError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: unexpected response (status %d): %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Reason, e.Status, e.Body)
}
