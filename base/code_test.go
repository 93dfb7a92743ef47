package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeRoundTrip(t *testing.T) {
	for _, state := range []string{"00000", "28000", "42501", "53100", "58P01", "XX000"} {
		code, err := ParseCode(state)
		assert.NoError(t, err)
		assert.Equal(t, state, code.String())
	}
}

func TestCodeValidation(t *testing.T) {
	_, err := ParseCode("2800")
	assert.Error(t, err)
	_, err = ParseCode("280000")
	assert.Error(t, err)
	_, err = ParseCode("")
	assert.Error(t, err)

	// zero is the success code and stands for "none"
	assert.Equal(t, "00000", Code(0).String())
	assert.Equal(t, Code(0), MustParseCode("00000"))
}
