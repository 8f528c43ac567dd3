package appointment

import (
	"fmt"
	"strconv"
	"strings"
)

const bookingSeqWidth = 4

// FormatBookingID renders seq with the configured prefix, e.g. "#SILB0007".
func FormatBookingID(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, bookingSeqWidth, seq)
}

// NextBookingSeq derives the next sequence from the highest booking id in
// use. A missing or unparsable id starts over at 1.
func NextBookingSeq(prefix, last string) int {
	if last == "" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}
