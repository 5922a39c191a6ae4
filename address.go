package cexkit

import (
	"strconv"
	"strings"
)

const minAddressLength = 16

// CheckAddress validates a withdrawal destination before any network
// call: long enough, no whitespace, not a single repeated character.
func CheckAddress(exchange, address string) error {
	bad := func() error {
		return NewError(ErrInvalidAddress, exchange, "address "+strconv.Quote(address))
	}
	if len(address) < minAddressLength {
		return bad()
	}
	if strings.ContainsAny(address, " \t\n\r") {
		return bad()
	}
	if strings.Count(address, address[:1]) == len(address) {
		return bad()
	}
	return nil
}
