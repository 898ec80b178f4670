package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/robottwo/llmscript/internal/styles"
)

// Reporter writes operator-facing messages. Headlines are styled when
// enabled; captured script output is always written untouched.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	styled bool
}

func NewReporter(out io.Writer, errOut io.Writer, styled bool) *Reporter {
	return &Reporter{out: out, errOut: errOut, styled: styled}
}

func (r *Reporter) style(render func(...string) string, message string) string {
	if !r.styled {
		return message
	}
	return render(message)
}

func (r *Reporter) Info(message string) {
	fmt.Fprintln(r.out, r.style(styles.INFO_MESSAGE, message))
}

func (r *Reporter) Warn(message string) {
	fmt.Fprintln(r.out, r.style(styles.WARNING_MESSAGE, message))
}

func (r *Reporter) Error(message string) {
	fmt.Fprintln(r.out, r.style(styles.ERROR_MESSAGE, message))
}

func (r *Reporter) Success(message string) {
	fmt.Fprintln(r.out, r.style(styles.SUCCESS_MESSAGE, message))
}

// Output relays captured script output, adding a final newline if missing.
func (r *Reporter) Output(text string) {
	if text == "" {
		return
	}
	fmt.Fprint(r.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(r.out)
	}
}

// Fatal reports an error that aborts the whole run.
func (r *Reporter) Fatal(err error) {
	fmt.Fprintln(r.errOut, r.style(styles.ERROR_MESSAGE, "Fatal: "+err.Error()))
}
