package gateway

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"

	"vbgateway/internal/price"
)

// TrxType is the bank transaction type code (TRTYPE field).
type TrxType string

const (
	TrxAuthorization TrxType = "0"
	TrxCompletion    TrxType = "21"
	TrxReversal      TrxType = "24"
)

// Wire field names, shared by requests and responses.
const (
	FieldTrxType   = "TRTYPE"
	FieldOrder     = "ORDER"
	FieldAmount    = "AMOUNT"
	FieldCurrency  = "CURRENCY"
	FieldRRN       = "RRN"
	FieldIntRef    = "INT_REF"
	FieldRC        = "RC"
	FieldApproval  = "APPROVAL"
	FieldPSign     = "P_SIGN"
	FieldText      = "TEXT"
	FieldTimestamp = "TIMESTAMP"
	FieldTerminal  = "TERMINAL"
	FieldMerchID   = "MERCH_ID"
	FieldBackRef   = "BACKREF"
	FieldEmail     = "EMAIL"
	FieldLang      = "LANG"
	FieldDesc      = "DESC"
)

var ErrUnparsable = errors.New("gateway: unparsable response")

// Message is a parsed bank response. A Message may exist and still be
// invalid (missing fields, bad signature); IsValid distinguishes the two.
// The engine never trusts any field of an invalid message.
type Message struct {
	TrxType  TrxType `validate:"required"`
	Order    string  `validate:"required"`
	Amount   string  `validate:"required"`
	Currency string  `validate:"required,len=3"`
	RRN      string  `validate:"required"`
	IntRef   string  `validate:"required"`
	RC       string
	Approval string
	PSign    string `validate:"required"`
	Text     string

	errs []string
}

var messageValidate = validator.New()

// FromValues builds a Message from posted form fields, recording field-level
// validation failures on the message itself. ErrUnparsable is returned only
// when the payload cannot be a bank response at all (no TRTYPE).
func FromValues(fields url.Values) (*Message, error) {
	if fields.Get(FieldTrxType) == "" {
		return nil, ErrUnparsable
	}
	m := &Message{
		TrxType:  TrxType(fields.Get(FieldTrxType)),
		Order:    fields.Get(FieldOrder),
		Amount:   fields.Get(FieldAmount),
		Currency: fields.Get(FieldCurrency),
		RRN:      fields.Get(FieldRRN),
		IntRef:   fields.Get(FieldIntRef),
		RC:       fields.Get(FieldRC),
		Approval: fields.Get(FieldApproval),
		PSign:    fields.Get(FieldPSign),
		Text:     fields.Get(FieldText),
	}
	if err := messageValidate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				m.errs = append(m.errs, fe.Field()+": "+fe.Tag())
			}
		} else {
			m.errs = append(m.errs, err.Error())
		}
	}
	return m, nil
}

func (m *Message) IsValid() bool {
	return len(m.errs) == 0
}

func (m *Message) Errors() []string {
	return append([]string(nil), m.errs...)
}

func (m *Message) addError(s string) {
	m.errs = append(m.errs, s)
}

func (m *Message) Price() price.Price {
	return price.New(m.Amount, m.Currency)
}

// RemoteID is the correlation key as stored on a payment at authorization.
func (m *Message) RemoteID() string {
	return m.RRN + "|" + m.IntRef
}
