package dispatch

import (
	"strconv"

	"github.com/specialistvlad/buildgen/internal/argparse"
)

// HandlerArguments are the keywords every handler command accepts.
type HandlerArguments struct {
	Append            bool
	Quiet             bool
	ReturnValue       string
	CaptureCMakeError string
	Source            string
	Build             string
	SubmitIndex       string
}

// Common returns the shared arguments. Command argument structs embed
// HandlerArguments and inherit this method.
func (a *HandlerArguments) Common() *HandlerArguments {
	return a
}

// SubmitIndexValue returns SUBMIT_INDEX as a number, 0 when absent or
// malformed.
func (a *HandlerArguments) SubmitIndexValue() int {
	n, err := strconv.Atoi(a.SubmitIndex)
	if err != nil {
		return 0
	}
	return n
}

// Arguments is satisfied by pointers to command argument structs.
type Arguments[T any] interface {
	*T
	Common() *HandlerArguments
}

// NewHandlerParser returns a schema with the shared keywords bound. Commands
// add their own keywords to it.
func NewHandlerParser[T any, PT Arguments[T]]() *argparse.Parser[T] {
	return argparse.New[T]().
		Flag("APPEND", func(a *T) *bool { return &PT(a).Common().Append }).
		Flag("QUIET", func(a *T) *bool { return &PT(a).Common().Quiet }).
		String("RETURN_VALUE", func(a *T) *string { return &PT(a).Common().ReturnValue }).
		String("CAPTURE_CMAKE_ERROR", func(a *T) *string { return &PT(a).Common().CaptureCMakeError }).
		String("SOURCE", func(a *T) *string { return &PT(a).Common().Source }).
		String("BUILD", func(a *T) *string { return &PT(a).Common().Build }).
		String("SUBMIT_INDEX", func(a *T) *string { return &PT(a).Common().SubmitIndex })
}
