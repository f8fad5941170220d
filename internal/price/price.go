package price

import (
	"fmt"
	"strconv"
)

// Price carries a decimal amount the way the bank sends it: as a string.
// Comparisons are numeric, so "100.00" equals "100.0" in the same currency.
type Price struct {
	Number       string `gorm:"type:varchar(32)" json:"number"`
	CurrencyCode string `gorm:"type:char(3)" json:"currency_code"`
}

func New(number, currencyCode string) Price {
	return Price{Number: number, CurrencyCode: currencyCode}
}

func (p Price) Value() (float64, error) {
	return strconv.ParseFloat(p.Number, 64)
}

func (p Price) Equals(other Price) bool {
	if p.CurrencyCode != other.CurrencyCode {
		return false
	}
	a, errA := p.Value()
	b, errB := other.Value()
	if errA != nil || errB != nil {
		return false
	}
	return a == b
}

func (p Price) IsPositive() bool {
	v, err := p.Value()
	return err == nil && v > 0
}

// GreaterThan reports p > other, false when currencies differ or either
// number fails to parse.
func (p Price) GreaterThan(other Price) bool {
	if p.CurrencyCode != other.CurrencyCode {
		return false
	}
	a, errA := p.Value()
	b, errB := other.Value()
	if errA != nil || errB != nil {
		return false
	}
	return a > b
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Number, p.CurrencyCode)
}
