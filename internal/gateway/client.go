package gateway

import (
	"context"
	"errors"
	"net/url"

	"vbgateway/internal/price"
)

var (
	ErrTimeout     = errors.New("gateway timeout")
	ErrServer      = errors.New("gateway 5xx")
	ErrClient      = errors.New("gateway 4xx")
	ErrCircuitOpen = errors.New("circuit open")
)

// AuthorizationRequest starts the off-site flow: the cardholder is redirected
// to the bank with these parameters.
type AuthorizationRequest struct {
	OrderID     string
	Amount      price.Price
	ReturnURL   string
	Description string
	Email       string
	Language    string
}

// RedirectForm is the auto-submitting form the storefront renders to hand the
// cardholder off to the bank.
type RedirectForm struct {
	URL    string
	Fields url.Values
}

// Client talks to the bank. RequestCompletion and RequestReversal return the
// raw field set extracted from the bank's synchronous response; ParseResponse
// turns raw fields (from either channel) into a validated Message.
type Client interface {
	RequestAuthorization(ctx context.Context, req AuthorizationRequest) (*RedirectForm, error)
	RequestCompletion(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error)
	RequestReversal(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error)
	ParseResponse(fields url.Values) (*Message, error)
}
