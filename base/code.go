package base

import (
	"fmt"

	"github.com/relex/gotils/logger"
)

// Code is the packed five-character condition code of a diagnostic, zero meaning none.
//
// Each character is stored in six bits offset from '0', following the host's own packing, so
// codes pass through unchanged and unpack to the exact original text.
type Code uint32

// ParseCode packs a five-character condition code
func ParseCode(state string) (Code, error) {
	if len(state) != 5 {
		return 0, fmt.Errorf("condition code must have exactly 5 characters: %q", state)
	}
	var code Code
	for i := 0; i < 5; i++ {
		code |= (Code(state[i]-'0') & 0x3f) << (6 * i)
	}
	return code, nil
}

// MustParseCode packs a statically-known condition code and panics on malformed input
func MustParseCode(state string) Code {
	code, err := ParseCode(state)
	if err != nil {
		logger.Panic(err)
	}
	return code
}

// String unpacks the condition code back to its five-character form
func (code Code) String() string {
	var buf [5]byte
	remaining := code
	for i := 0; i < 5; i++ {
		buf[i] = byte(remaining&0x3f) + '0'
		remaining >>= 6
	}
	return string(buf[:])
}
