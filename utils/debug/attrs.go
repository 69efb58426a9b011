package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// Attrs collects key=value pairs printed after a tree node label. Empty
// values are skipped.
type Attrs struct {
	pairs []string
}

// Add appends pair unless value is empty. Values with spaces or quotes are
// quoted.
func (a *Attrs) Add(key, value string) {
	if value == "" {
		return
	}
	if strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	a.pairs = append(a.pairs, key+"="+value)
}

// Addf formats value before adding it.
func (a *Attrs) Addf(key, format string, args ...any) {
	a.Add(key, fmt.Sprintf(format, args...))
}

// Len returns number of collected pairs.
func (a Attrs) Len() int {
	return len(a.pairs)
}

// String returns pairs separated and preceded by a space, empty string when
// nothing was collected, so it can be appended to a label directly.
func (a Attrs) String() string {
	if len(a.pairs) == 0 {
		return ""
	}
	return " " + strings.Join(a.pairs, " ")
}
