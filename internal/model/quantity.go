package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxQuantity bounds a single booking.
const MaxQuantity = math.MaxInt32

// Quantity is a ticket count as sent by a client: a JSON number or a
// numeric string. Decoding never fails; Int reports whether the value is
// a usable count.
type Quantity string

// UnmarshalJSON keeps a JSON string as is and any other token as its raw
// text, leaving range checks to Int.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*q = Quantity(s)
		return nil
	}
	*q = Quantity(bytes.TrimSpace(b))
	return nil
}

// Int returns the count, or ErrQtyNotPositive unless q is a whole number in
// [1, MaxQuantity]. Whole numbers written with a fraction part ("2.0") are
// accepted.
func (q Quantity) Int() (int, error) {
	s := strings.TrimSpace(string(q))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 1 || n > MaxQuantity {
			return 0, ErrQtyNotPositive
		}
		return int(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > MaxQuantity {
		return 0, ErrQtyNotPositive
	}
	return int(f), nil
}
