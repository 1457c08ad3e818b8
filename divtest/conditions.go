package divtest

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/iov-one/dividends"
)

var seq uint64

// NewCondition returns a condition that is unique within the test run.
func NewCondition() dividends.Condition {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, atomic.AddUint64(&seq, 1))
	return dividends.NewCondition("divtest", "seq", data)
}

// RandomAddr returns the address of a new unique condition.
func RandomAddr() dividends.Address {
	return NewCondition().Address()
}
