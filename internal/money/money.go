package money

import "fmt"

// Cents is an amount of money in integer minor units (US cents).
// All billing arithmetic happens on this type; floats appear only
// at the formatting edge.
type Cents int64

func (c Cents) Add(other Cents) Cents {
	return c + other
}

func (c Cents) Sub(other Cents) Cents {
	return c - other
}

func (c Cents) Mul(n int) Cents {
	return c * Cents(n)
}

func (c Cents) IsNegative() bool {
	return c < 0
}

// Format formats the amount as dollars with two decimal places
func (c Cents) Format() string {
	dollars := float64(c) / 100
	return fmt.Sprintf("$%.2f", dollars)
}

// FormatShort formats the amount without cents when they are zero
func (c Cents) FormatShort() string {
	dollars := float64(c) / 100
	if c%100 == 0 {
		return fmt.Sprintf("$%.0f", dollars)
	}
	return fmt.Sprintf("$%.2f", dollars)
}

// FormatSigned formats negative amounts with an explicit minus sign in
// front of the currency symbol. A negative balance is a customer credit
// and must stay visible, not get clipped to zero.
func (c Cents) FormatSigned() string {
	if c < 0 {
		return "-" + (-c).Format()
	}
	return c.Format()
}
