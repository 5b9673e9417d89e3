package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Matcher decides whether an actual argument satisfies an expected one.
// Any value passed to Expect that implements Matcher is used as-is;
// other values are compared by value.
type Matcher interface {
	Matches(actual any) bool
	String() string
}

// Any matches every argument value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Matches(any) bool { return true }
func (anyMatcher) String() string   { return "<any>" }

// Match builds a Matcher from a predicate. desc is used when rendering the
// expectation in failure messages.
func Match(desc string, pred func(actual any) bool) Matcher {
	return predicateMatcher{desc: desc, pred: pred}
}

type predicateMatcher struct {
	desc string
	pred func(any) bool
}

func (m predicateMatcher) Matches(actual any) bool { return m.pred(actual) }
func (m predicateMatcher) String() string          { return "<" + m.desc + ">" }

// matchArgs compares expected against actual positionally.
// Returns (-1, false) on an arity mismatch, (i, false) for the first
// mismatching position, and (-1, true) when everything matches.
func matchArgs(expected, actual []any) (int, bool) {
	if len(expected) != len(actual) {
		return -1, false
	}
	for i := range expected {
		if !argMatches(expected[i], actual[i]) {
			return i, false
		}
	}
	return -1, true
}

func argMatches(expected, actual any) bool {
	if m, ok := expected.(Matcher); ok {
		return m.Matches(actual)
	}
	return assert.ObjectsAreEqual(expected, actual)
}

// FormatCall renders a call as name(arg1, arg2, ...).
func FormatCall(fn string, args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = FormatValue(a)
	}
	return fn + "(" + strings.Join(parts, ", ") + ")"
}

// FormatValue renders a single argument or return value for messages.
// Strings are quoted so that "" and " " stay distinguishable.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case Matcher:
		return val.String()
	case string:
		return strconv.Quote(val)
	case []byte:
		return fmt.Sprintf("%#v", val)
	case error:
		return fmt.Sprintf("error(%q)", val.Error())
	default:
		return fmt.Sprintf("%v", val)
	}
}
