package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// FormatPercentage renders p with full precision and always at least one
// decimal, so 70 prints as "70.0".
func FormatPercentage(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteSummary prints the accuracy and elapsed time of a run.
func (r *Report) WriteSummary(w io.Writer) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "Result: %s%% correct answers\n", FormatPercentage(r.Result.Percentage()))
	fmt.Fprintf(w, "Time: %d seconds\n", int64(r.Elapsed.Round(time.Second)/time.Second))
	if r.RunID != 0 {
		fmt.Fprintf(w, "Recorded as run %d\n", r.RunID)
	}
}
