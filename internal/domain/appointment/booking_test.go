package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBookingID(t *testing.T) {
	assert.Equal(t, "#SILB0001", FormatBookingID("#SILB", 1))
	assert.Equal(t, "#SILB0042", FormatBookingID("#SILB", 42))
	assert.Equal(t, "#SILB12345", FormatBookingID("#SILB", 12345))
}

func TestNextBookingSeq(t *testing.T) {
	cases := map[string]int{
		"":          1,
		"#SILB0001": 2,
		"#SILB0099": 100,
		"#SILB9999": 10000,
		"garbage":   1,
	}
	for last, want := range cases {
		assert.Equal(t, want, NextBookingSeq("#SILB", last), last)
	}
}
