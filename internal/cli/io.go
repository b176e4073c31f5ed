package cli

import (
	"fmt"
	"io"
)

// IO bundles a command's streams. Warnings recorded before the first
// stdout write are printed ahead of it and again at the end, so a reader
// piping through head or tail still sees them.
type IO struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool
}

// NewIO creates a new IO instance. in may be nil.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{in: in, out: out, errOut: errOut}
}

// Stdin returns the input stream, or nil when none was provided.
func (o *IO) Stdin() io.Reader { return o.in }

// Stderr returns an IO whose stdout is o's stderr, for help text printed
// after an error.
func (o *IO) Stderr() *IO {
	return &IO{out: o.errOut, errOut: o.errOut}
}

// Warn records a problem that did not stop the command. Any warning turns
// the exit code into 1.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// Write writes raw bytes to stdout.
func (o *IO) Write(p []byte) {
	o.flushWarningsStart()
	_, _ = o.out.Write(p)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Finish prints warnings to stderr and returns the exit code: 1 if any
// warning was recorded, 0 otherwise. Warnings already shown ahead of the
// output are repeated here.
func (o *IO) Finish() int {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	return min(len(o.warnings), 1)
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
