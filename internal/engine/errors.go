package engine

import "errors"

var (
	// ErrPreconditionState: a capture/void/refund was invoked against a
	// payment whose state does not allow it. Never retried.
	ErrPreconditionState = errors.New("engine: payment state precondition violated")
	// ErrUnknownTrxType: the bank sent a transaction type outside the
	// protocol contract.
	ErrUnknownTrxType = errors.New("engine: unknown bank transaction type")
	// ErrLockUnavailable: a named lock could not be acquired before the
	// wait budget ran out. The operation is abandoned without mutation.
	ErrLockUnavailable = errors.New("engine: lock unavailable")
	// ErrGatewayResponse: the synchronous bank response failed parsing or
	// validation during orchestration.
	ErrGatewayResponse = errors.New("engine: invalid gateway response")
	// ErrRefundAmount: requested refund exceeds the captured amount.
	ErrRefundAmount = errors.New("engine: refund amount exceeds payment amount")
	// ErrRemoteID: a payment's stored correlation key is malformed.
	ErrRemoteID = errors.New("engine: malformed remote id")
)
