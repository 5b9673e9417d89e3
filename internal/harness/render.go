package harness

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	DisableMethods:          true,
}

// renderValue formats a value for failure messages. Scalars render inline;
// composites go through spew.
func renderValue(v any) string {
	if v == nil {
		return "nil"
	}
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case error:
		return fmt.Sprintf("error(%q)", val.Error())
	}
	rv := reflect.ValueOf(v)
	if isScalar(rv) {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(spewConfig.Sdump(v), "\n")
}

func isScalar(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}

// renderDiff returns a unified diff of two composite values of the same
// type, or "" when a diff would not help.
func renderDiff(expected, actual any) string {
	if expected == nil || actual == nil {
		return ""
	}
	et, at := reflect.TypeOf(expected), reflect.TypeOf(actual)
	if et != at {
		return ""
	}
	switch et.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Pointer:
	default:
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(spewConfig.Sdump(expected)),
		B:        difflib.SplitLines(spewConfig.Sdump(actual)),
		FromFile: "Expected",
		ToFile:   "Actual",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return diff
}

// formatMessage turns testify-style msgAndArgs into a string: a lone value
// is printed as-is, a leading string with more values is a format. Values
// without a leading format string are printed with %+v, never Sprint, so
// vet checks assertion messages as printf calls.
func formatMessage(msgAndArgs ...any) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprintf("%+v", msgAndArgs)
}

// joinMessage appends the caller's message to a failure description.
func joinMessage(desc, msg string) string {
	switch {
	case msg == "":
		return desc
	case desc == "":
		return msg
	}
	return desc + ". " + msg
}
