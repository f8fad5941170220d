package gateway

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrBadSignature = errors.New("gateway: bad response signature")

// Verifier checks the P_SIGN of a parsed message. The production scheme is
// RSA over an MD5 digest with the bank's padding constants; wiring that in is
// a Verifier implementation concern, the engine never sees raw signatures.
type Verifier interface {
	Verify(m *Message) error
}

// SharedSecretVerifier implements the MAC-style scheme used by the fake
// client: P_SIGN is the uppercase hex MD5 of the secret and the load-bearing
// response fields.
type SharedSecretVerifier struct {
	Secret string
}

func (v SharedSecretVerifier) Verify(m *Message) error {
	expected := signPayload(v.Secret, m.TrxType, m.Order, m.Amount, m.Currency, m.RRN, m.IntRef)
	if !strings.EqualFold(m.PSign, expected) {
		return ErrBadSignature
	}
	return nil
}

func signPayload(secret string, trx TrxType, order, amount, currency, rrn, intRef string) string {
	payload := strings.Join([]string{secret, string(trx), order, amount, currency, rrn, intRef}, ";")
	sum := md5.Sum([]byte(payload))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
