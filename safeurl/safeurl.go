// Package safeurl provides bounded-I/O helpers shared by the fetch,
// content, and providers packages.
package safeurl

import (
	"fmt"
	"io"
)

// DefaultMaxBody caps response bodies read through LimitedReadAll when a
// caller does not supply its own limit.
const DefaultMaxBody int64 = 20 << 20

// LimitedReadAll reads at most maxBytes from r, returning an error if the
// stream has more. This bounds memory use against a misbehaving or hostile
// origin without restricting which origins may be fetched.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("safeurl: response exceeds %d bytes", maxBytes)
	}
	return data, nil
}
