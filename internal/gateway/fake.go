package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"vbgateway/internal/price"
)

// FakeClient stands in for the bank in development and tests. Responses are
// signed with the config's shared secret so they round-trip ParseResponse.
// Amounts ending in .97/.98/.99 inject client/timeout/server failures.
type FakeClient struct {
	cfg      Config
	verifier Verifier
	seq      atomic.Int64
}

func NewFakeClient(cfg Config) *FakeClient {
	return &FakeClient{cfg: cfg, verifier: SharedSecretVerifier{Secret: cfg.SharedSecret}}
}

func (c *FakeClient) RequestAuthorization(ctx context.Context, req AuthorizationRequest) (*RedirectForm, error) {
	if err := c.injectedFailure(ctx, req.Amount); err != nil {
		return nil, err
	}
	fields := url.Values{}
	fields.Set(FieldMerchID, c.cfg.Merchant)
	fields.Set(FieldTerminal, c.cfg.Terminal)
	fields.Set(FieldTrxType, string(TrxAuthorization))
	fields.Set(FieldOrder, req.OrderID)
	fields.Set(FieldAmount, req.Amount.Number)
	fields.Set(FieldCurrency, req.Amount.CurrencyCode)
	fields.Set(FieldTimestamp, time.Now().UTC().Format(TimestampFormat))
	fields.Set(FieldBackRef, req.ReturnURL)
	fields.Set(FieldEmail, req.Email)
	fields.Set(FieldLang, req.Language)
	fields.Set(FieldDesc, req.Description)
	fields.Set(FieldPSign, signPayload(c.cfg.SharedSecret, TrxAuthorization, req.OrderID, req.Amount.Number, req.Amount.CurrencyCode, "", ""))
	return &RedirectForm{URL: c.cfg.GatewayURL(), Fields: fields}, nil
}

func (c *FakeClient) RequestCompletion(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	// A completion yields a new INT_REF, like the real gateway.
	return c.respond(ctx, TrxCompletion, orderID, amount, rrn, "")
}

func (c *FakeClient) RequestReversal(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	// A reversal echoes the INT_REF of the transaction being reversed.
	return c.respond(ctx, TrxReversal, orderID, amount, rrn, intRef)
}

func (c *FakeClient) ParseResponse(fields url.Values) (*Message, error) {
	m, err := FromValues(fields)
	if err != nil {
		return nil, err
	}
	if m.IsValid() {
		if err := c.verifier.Verify(m); err != nil {
			m.addError(err.Error())
		}
	}
	return m, nil
}

// SimulateNotification builds the signed field set the bank would POST to the
// notify endpoint for a fresh authorization. Test and demo helper.
func (c *FakeClient) SimulateNotification(orderID string, amount price.Price) url.Values {
	rrn := fmt.Sprintf("FAKE-RRN-%06d", c.seq.Add(1))
	intRef := fmt.Sprintf("FAKE-REF-%06d", c.seq.Add(1))
	return c.signedFields(TrxAuthorization, orderID, amount, rrn, intRef)
}

func (c *FakeClient) respond(ctx context.Context, trx TrxType, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	if err := c.injectedFailure(ctx, amount); err != nil {
		return nil, err
	}
	if rrn == "" {
		rrn = fmt.Sprintf("FAKE-RRN-%06d", c.seq.Add(1))
	}
	if intRef == "" {
		intRef = fmt.Sprintf("FAKE-REF-%06d", c.seq.Add(1))
	}
	return c.signedFields(trx, orderID, amount, rrn, intRef), nil
}

func (c *FakeClient) signedFields(trx TrxType, orderID string, amount price.Price, rrn, intRef string) url.Values {
	fields := url.Values{}
	fields.Set(FieldTrxType, string(trx))
	fields.Set(FieldOrder, orderID)
	fields.Set(FieldAmount, amount.Number)
	fields.Set(FieldCurrency, amount.CurrencyCode)
	fields.Set(FieldRRN, rrn)
	fields.Set(FieldIntRef, intRef)
	fields.Set(FieldRC, "00")
	fields.Set(FieldApproval, "OK")
	fields.Set(FieldPSign, signPayload(c.cfg.SharedSecret, trx, orderID, amount.Number, amount.CurrencyCode, rrn, intRef))
	return fields
}

func (c *FakeClient) injectedFailure(ctx context.Context, amount price.Price) error {
	var failure error
	switch {
	case strings.HasSuffix(amount.Number, ".97"):
		failure = ErrClient
	case strings.HasSuffix(amount.Number, ".98"):
		failure = ErrTimeout
	case strings.HasSuffix(amount.Number, ".99"):
		failure = ErrServer
	}
	delay := 10 * time.Millisecond
	if failure != nil {
		delay = 30 * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return failure
	}
}
