package engine

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"vbgateway/internal/events"
	"vbgateway/internal/gateway"
	"vbgateway/internal/order"
	"vbgateway/internal/payment"
	"vbgateway/internal/price"
	"vbgateway/kit/broker"
)

const (
	IntentCapture   = "capture"
	IntentAuthorize = "authorize"
)

// UseIPN modes: which channel is allowed to mutate payment state.
const (
	UseIPNDisabled = 0 // direct bank responses only
	UseIPNOnly     = 1 // asynchronous notifications only
	UseIPNBoth     = 2
)

const lockAcquireAttempts = 25

type Settings struct {
	// GatewayID identifies this configured gateway instance; GatewayIDs
	// lists every sibling instance sharing the payments table, used to
	// scope correlation queries.
	GatewayID  string
	GatewayIDs []string

	Intent string
	UseIPN int
	// Debug logs raw payloads. No behavioral effect.
	Debug bool
	Test  bool

	// CheckoutBaseURL is where failed return redirects send the customer,
	// e.g. https://shop.example/checkout.
	CheckoutBaseURL string

	LockWait time.Duration
}

// Engine owns the payment state machine: it reconciles bank messages from
// the notification and return channels, and drives capture/void/refund
// round-trips whose synchronous responses feed the same finalize operations.
type Engine struct {
	settings Settings
	gateway  GatewayContract
	payments PaymentStoreContract
	orders   OrderStoreContract
	locker   LockerContract
	bus      PublisherContract
}

func New(settings Settings, gw GatewayContract, payments PaymentStoreContract, orders OrderStoreContract, locker LockerContract, bus PublisherContract) *Engine {
	if settings.LockWait <= 0 {
		settings.LockWait = 30 * time.Second
	}
	if len(settings.GatewayIDs) == 0 {
		settings.GatewayIDs = []string{settings.GatewayID}
	}
	return &Engine{
		settings: settings,
		gateway:  gw,
		payments: payments,
		orders:   orders,
		locker:   locker,
		bus:      bus,
	}
}

func (e *Engine) ID() string {
	return e.settings.GatewayID
}

// OnNotify processes one asynchronous bank notification. Every failure short
// of an unknown transaction type is swallowed after logging: the bank accepts
// no error response, and bouncing errors back only triggers its retry storm.
func (e *Engine) OnNotify(ctx context.Context, fields url.Values) error {
	if e.settings.UseIPN == UseIPNDisabled {
		return nil
	}
	if e.settings.Debug {
		log.Printf("layer=engine component=notify method=OnNotify gateway_id=%s request=%s", e.settings.GatewayID, fields.Encode())
	}

	msg, err := e.gateway.ParseResponse(fields)
	if err != nil {
		log.Printf("layer=engine component=notify method=OnNotify gateway_id=%s err=%v", e.settings.GatewayID, err)
		e.rejected(ctx, "unparsable notification")
		return nil
	}
	if !msg.IsValid() {
		log.Printf("layer=engine component=notify method=OnNotify gateway_id=%s err=invalid_message details=%q", e.settings.GatewayID, strings.Join(msg.Errors(), "; "))
		e.rejected(ctx, "invalid notification")
		return nil
	}

	ord, err := e.orders.Load(ctx, msg.Order)
	if err != nil {
		log.Printf("layer=engine component=notify method=OnNotify gateway_id=%s order_id=%s err=%v", e.settings.GatewayID, msg.Order, err)
		e.rejected(ctx, "unknown order")
		return nil
	}

	switch msg.TrxType {
	case gateway.TrxAuthorization:
		// The blocked amount must match the order total exactly.
		if !msg.Price().Equals(ord.Total) {
			log.Printf("layer=engine component=notify method=OnNotify order_id=%s err=amount_mismatch got=%s want=%s", ord.ID, msg.Price(), ord.Total)
			e.rejected(ctx, "amount mismatch")
			return nil
		}
		if _, err := e.paymentByRemoteResponse(ctx, ord, msg); err != nil {
			log.Printf("layer=engine component=notify method=OnNotify order_id=%s err=%v", ord.ID, err)
		}

	case gateway.TrxCompletion:
		p := e.loadPayment(ctx, msg.RRN+"|")
		if p == nil {
			log.Printf("layer=engine component=notify method=OnNotify order_id=%s rrn=%s err=no_payment_for_completion", ord.ID, msg.RRN)
			return nil
		}
		if err := e.finalizeCapturedPayment(ctx, p.ID, msg); err != nil {
			log.Printf("layer=engine component=notify method=OnNotify payment_id=%s err=%v", p.ID, err)
		}

	case gateway.TrxReversal:
		p := e.loadPayment(ctx, msg.RemoteID())
		if p == nil {
			log.Printf("layer=engine component=notify method=OnNotify order_id=%s remote_id=%s err=no_payment_for_reversal", ord.ID, msg.RemoteID())
			return nil
		}
		var ferr error
		switch p.State {
		case payment.StatusCompleted:
			ferr = e.finalizeRefundPayment(ctx, p.ID, msg)
		case payment.StatusAuthorization:
			ferr = e.finalizeVoidPayment(ctx, p.ID, msg)
		default:
			// Reversal against a payment already voided or refunded.
			// Idempotent convergence: ignore, do not error.
			log.Printf("layer=engine component=notify method=OnNotify payment_id=%s state=%s err=reversal_ignored", p.ID, p.State)
		}
		if ferr != nil {
			log.Printf("layer=engine component=notify method=OnNotify payment_id=%s err=%v", p.ID, ferr)
		}

	default:
		log.Printf("layer=engine component=notify method=OnNotify gateway_id=%s trtype=%s err=unknown_transaction_type", e.settings.GatewayID, msg.TrxType)
		return fmt.Errorf("%w: %q", ErrUnknownTrxType, msg.TrxType)
	}
	return nil
}

// OnReturn processes the synchronous browser redirect. Failures surface as a
// redirect back to the order-information checkout step; nothing propagates.
func (e *Engine) OnReturn(ctx context.Context, ord *order.Order, fields url.Values) Outcome {
	if e.settings.Debug {
		log.Printf("layer=engine component=return method=OnReturn gateway_id=%s order_id=%s request=%s", e.settings.GatewayID, ord.ID, fields.Encode())
	}
	if e.settings.UseIPN == UseIPNOnly {
		// Payments are created from notifications only; the redirect just
		// lets the customer continue.
		return Continue()
	}

	msg, err := e.gateway.ParseResponse(fields)
	if err != nil {
		log.Printf("layer=engine component=return method=OnReturn order_id=%s err=%v", ord.ID, err)
		return e.errorRedirect(ord.ID)
	}
	if !msg.IsValid() {
		log.Printf("layer=engine component=return method=OnReturn order_id=%s err=invalid_message details=%q", ord.ID, strings.Join(msg.Errors(), "; "))
		return e.errorRedirect(ord.ID)
	}
	if !msg.Price().Equals(ord.Total) {
		log.Printf("layer=engine component=return method=OnReturn order_id=%s err=amount_mismatch got=%s want=%s", ord.ID, msg.Price(), ord.Total)
		return e.errorRedirect(ord.ID)
	}

	p, err := e.paymentByRemoteResponse(ctx, ord, msg)
	if err != nil {
		log.Printf("layer=engine component=return method=OnReturn order_id=%s err=%v", ord.ID, err)
		return e.errorRedirect(ord.ID)
	}
	if p == nil {
		log.Printf("layer=engine component=return method=OnReturn order_id=%s err=no_payment", ord.ID)
		return e.errorRedirect(ord.ID)
	}
	return Continue()
}

// paymentByRemoteResponse is the locate-or-create path shared by both
// channels. The order-scoped lock guarantees at most one payment per remote
// correlation key; the follow-up capture deliberately runs outside that lock
// since it is a bank round-trip.
func (e *Engine) paymentByRemoteResponse(ctx context.Context, ord *order.Order, msg *gateway.Message) (*payment.Payment, error) {
	lid := "vbgateway_order_" + ord.ID
	if !e.lockAcquire(lid) {
		return nil, fmt.Errorf("%w: %s", ErrLockUnavailable, lid)
	}

	var createErr error
	p := e.loadPayment(ctx, msg.RRN+"|")
	if p == nil {
		p = &payment.Payment{
			ID:           uuid.NewString(),
			OrderID:      ord.ID,
			GatewayID:    e.settings.GatewayID,
			State:        payment.StatusAuthorization,
			Amount:       msg.Price(),
			RemoteID:     msg.RemoteID(),
			RemoteState:  msg.RC,
			Test:         e.settings.Test,
			AuthorizedAt: time.Now().UTC(),
		}
		if createErr = e.payments.Create(ctx, p); createErr != nil {
			p = nil
		} else {
			log.Printf("layer=engine component=payment method=paymentByRemoteResponse payment_id=%s order_id=%s amount=%s remote_id=%s msg=authorized", p.ID, ord.ID, p.Amount, p.RemoteID)
			e.publish(ctx, events.PaymentAuthorized{
				PaymentID: p.ID,
				OrderID:   ord.ID,
				GatewayID: e.settings.GatewayID,
				Amount:    p.Amount.Number,
				Currency:  p.Amount.CurrencyCode,
				RemoteID:  p.RemoteID,
				At:        time.Now().UTC(),
			})
		}
	}
	e.locker.Release(lid)

	if createErr != nil {
		return nil, createErr
	}
	if p != nil && p.State == payment.StatusAuthorization && e.settings.Intent == IntentCapture {
		if err := e.CapturePayment(ctx, p, nil); err != nil {
			return p, err
		}
	}
	return p, nil
}

// CapturePayment completes a blocked authorization. Unless state updates are
// routed through notifications only, the synchronous response finalizes the
// transition immediately.
func (e *Engine) CapturePayment(ctx context.Context, p *payment.Payment, amount *price.Price) error {
	if p.State != payment.StatusAuthorization {
		return fmt.Errorf("%w: capture requires %s, payment %s is %s", ErrPreconditionState, payment.StatusAuthorization, p.ID, p.State)
	}
	amt := p.Amount
	if amount != nil {
		amt = *amount
	}
	rrn, intRef, err := splitRemoteID(p.RemoteID)
	if err != nil {
		return err
	}

	fields, err := e.gateway.RequestCompletion(ctx, p.OrderID, amt, rrn, intRef)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=CapturePayment payment_id=%s err=%v", p.ID, err)
		return fmt.Errorf("capture request for payment %s: %w", p.ID, err)
	}
	if e.settings.Debug {
		log.Printf("layer=engine component=orchestration method=CapturePayment payment_id=%s response=%s", p.ID, fields.Encode())
	}
	if e.settings.UseIPN == UseIPNOnly {
		return nil
	}

	msg, err := e.parseSyncResponse(fields)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=CapturePayment payment_id=%s err=%v", p.ID, err)
		return err
	}
	return e.finalizeCapturedPayment(ctx, p.ID, msg)
}

// VoidPayment reverses a still-uncaptured authorization.
func (e *Engine) VoidPayment(ctx context.Context, p *payment.Payment) error {
	if p.State != payment.StatusAuthorization {
		return fmt.Errorf("%w: void requires %s, payment %s is %s", ErrPreconditionState, payment.StatusAuthorization, p.ID, p.State)
	}
	rrn, intRef, err := splitRemoteID(p.RemoteID)
	if err != nil {
		return err
	}

	fields, err := e.gateway.RequestReversal(ctx, p.OrderID, p.Amount, rrn, intRef)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=VoidPayment payment_id=%s err=%v", p.ID, err)
		return fmt.Errorf("reversal request for payment %s: %w", p.ID, err)
	}
	if e.settings.Debug {
		log.Printf("layer=engine component=orchestration method=VoidPayment payment_id=%s response=%s", p.ID, fields.Encode())
	}
	if e.settings.UseIPN == UseIPNOnly {
		return nil
	}

	msg, err := e.parseSyncResponse(fields)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=VoidPayment payment_id=%s err=%v", p.ID, err)
		return err
	}
	return e.finalizeVoidPayment(ctx, p.ID, msg)
}

// RefundPayment reverses a captured payment, fully or partially.
func (e *Engine) RefundPayment(ctx context.Context, p *payment.Payment, amount *price.Price) error {
	if p.State != payment.StatusCompleted {
		return fmt.Errorf("%w: refund requires %s, payment %s is %s", ErrPreconditionState, payment.StatusCompleted, p.ID, p.State)
	}
	amt := p.Amount
	if amount != nil {
		amt = *amount
	}
	if !amt.IsPositive() || amt.CurrencyCode != p.Amount.CurrencyCode || amt.GreaterThan(p.Amount) {
		return fmt.Errorf("%w: %s against %s", ErrRefundAmount, amt, p.Amount)
	}
	rrn, intRef, err := splitRemoteID(p.RemoteID)
	if err != nil {
		return err
	}

	fields, err := e.gateway.RequestReversal(ctx, p.OrderID, amt, rrn, intRef)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=RefundPayment payment_id=%s err=%v", p.ID, err)
		return fmt.Errorf("reversal request for payment %s: %w", p.ID, err)
	}
	if e.settings.Debug {
		log.Printf("layer=engine component=orchestration method=RefundPayment payment_id=%s response=%s", p.ID, fields.Encode())
	}
	if e.settings.UseIPN == UseIPNOnly {
		return nil
	}

	msg, err := e.parseSyncResponse(fields)
	if err != nil {
		log.Printf("layer=engine component=orchestration method=RefundPayment payment_id=%s err=%v", p.ID, err)
		return err
	}
	return e.finalizeRefundPayment(ctx, p.ID, msg)
}

// finalizeCapturedPayment moves a payment to completed. The re-read under the
// payment lock is what makes duplicate delivery safe: a second application
// finds the payment already completed and does nothing.
func (e *Engine) finalizeCapturedPayment(ctx context.Context, paymentID string, msg *gateway.Message) error {
	lid := "vbgateway_payment_" + paymentID
	if !e.lockAcquire(lid) {
		return fmt.Errorf("%w: %s", ErrLockUnavailable, lid)
	}
	defer e.locker.Release(lid)

	p, err := e.payments.LoadUnchanged(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.State == payment.StatusCompleted {
		return nil
	}
	if p.State != payment.StatusAuthorization {
		log.Printf("layer=engine component=finalize method=finalizeCapturedPayment payment_id=%s state=%s err=completion_ignored", p.ID, p.State)
		return nil
	}

	// INT_REF changes after capture; the remote id keeps the old one for
	// reversal correlation.
	rrn, oldIntRef, err := splitRemoteID(p.RemoteID)
	if err != nil {
		return err
	}
	p.RemoteID = rrn + "|" + msg.IntRef + "|" + oldIntRef
	p.State = payment.StatusCompleted
	if err := e.payments.Save(ctx, p); err != nil {
		return err
	}
	log.Printf("layer=engine component=finalize method=finalizeCapturedPayment payment_id=%s order_id=%s amount=%s msg=captured", p.ID, p.OrderID, p.Amount)
	e.publish(ctx, events.PaymentCaptured{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount.Number,
		Currency:  p.Amount.CurrencyCode,
		RemoteID:  p.RemoteID,
		At:        time.Now().UTC(),
	})
	return nil
}

// finalizeRefundPayment moves a completed payment to refunded and records the
// refunded amount from the bank response.
func (e *Engine) finalizeRefundPayment(ctx context.Context, paymentID string, msg *gateway.Message) error {
	lid := "vbgateway_payment_" + paymentID
	if !e.lockAcquire(lid) {
		return fmt.Errorf("%w: %s", ErrLockUnavailable, lid)
	}
	defer e.locker.Release(lid)

	p, err := e.payments.LoadUnchanged(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.State == payment.StatusRefunded {
		return nil
	}
	if p.State != payment.StatusCompleted {
		log.Printf("layer=engine component=finalize method=finalizeRefundPayment payment_id=%s state=%s err=refund_ignored", p.ID, p.State)
		return nil
	}

	refunded := msg.Price()
	p.RefundedAmount = &refunded
	p.State = payment.StatusRefunded
	if err := e.payments.Save(ctx, p); err != nil {
		return err
	}
	log.Printf("layer=engine component=finalize method=finalizeRefundPayment payment_id=%s order_id=%s amount=%s msg=refunded", p.ID, p.OrderID, refunded)
	e.publish(ctx, events.PaymentRefunded{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    refunded.Number,
		Currency:  refunded.CurrencyCode,
		At:        time.Now().UTC(),
	})
	return nil
}

// finalizeVoidPayment moves an uncaptured authorization to voided.
func (e *Engine) finalizeVoidPayment(ctx context.Context, paymentID string, msg *gateway.Message) error {
	lid := "vbgateway_payment_" + paymentID
	if !e.lockAcquire(lid) {
		return fmt.Errorf("%w: %s", ErrLockUnavailable, lid)
	}
	defer e.locker.Release(lid)

	p, err := e.payments.LoadUnchanged(ctx, paymentID)
	if err != nil {
		return err
	}
	if p.State == payment.StatusAuthorizationVoided {
		return nil
	}
	if p.State != payment.StatusAuthorization {
		log.Printf("layer=engine component=finalize method=finalizeVoidPayment payment_id=%s state=%s err=void_ignored", p.ID, p.State)
		return nil
	}

	p.State = payment.StatusAuthorizationVoided
	if err := e.payments.Save(ctx, p); err != nil {
		return err
	}
	log.Printf("layer=engine component=finalize method=finalizeVoidPayment payment_id=%s order_id=%s msg=voided", p.ID, p.OrderID)
	e.publish(ctx, events.PaymentVoided{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		At:        time.Now().UTC(),
	})
	return nil
}

func (e *Engine) parseSyncResponse(fields url.Values) (*gateway.Message, error) {
	msg, err := e.gateway.ParseResponse(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayResponse, err)
	}
	if !msg.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrGatewayResponse, strings.Join(msg.Errors(), "; "))
	}
	return msg, nil
}

func (e *Engine) loadPayment(ctx context.Context, prefix string) *payment.Payment {
	list, err := e.payments.QueryByRemoteIDPrefix(ctx, prefix, e.settings.GatewayIDs)
	if err != nil {
		log.Printf("layer=engine component=payment method=loadPayment prefix=%s err=%v", prefix, err)
		return nil
	}
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// lockAcquire implements block-then-recheck: a failed try-acquire waits for
// the holder and tries again, up to the attempt budget.
func (e *Engine) lockAcquire(name string) bool {
	for i := 0; i < lockAcquireAttempts; i++ {
		if !e.locker.MayBeAvailable(name) {
			if !e.locker.Wait(name, e.settings.LockWait) {
				return false
			}
		}
		if e.locker.Acquire(name) {
			return true
		}
	}
	return false
}

func (e *Engine) errorRedirect(orderID string) Outcome {
	return RedirectTo(fmt.Sprintf("%s/%s/order_information", strings.TrimRight(e.settings.CheckoutBaseURL, "/"), orderID))
}

func (e *Engine) rejected(ctx context.Context, reason string) {
	e.publish(ctx, events.NotificationRejected{
		GatewayID: e.settings.GatewayID,
		Reason:    reason,
		At:        time.Now().UTC(),
	})
}

func (e *Engine) publish(ctx context.Context, evt broker.Event) {
	if e.bus != nil {
		e.bus.Publish(ctx, evt)
	}
}

func splitRemoteID(remoteID string) (rrn, intRef string, err error) {
	parts := strings.SplitN(remoteID, "|", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrRemoteID, remoteID)
	}
	return parts[0], parts[1], nil
}
