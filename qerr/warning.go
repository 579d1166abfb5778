package qerr

import "fmt"

// A Warning is a non-fatal problem found while compiling or running a query.
type Warning struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%d: %s", w.Code, w.Message)
}

type Warnings []Warning

func (w *Warnings) Add(kind Kind, format string, args ...any) {
	*w = append(*w, Warning{Code: kind.Code(), Message: fmt.Sprintf(format, args...)})
}

func (w Warnings) Messages() []string {
	out := make([]string, 0, len(w))
	for _, warning := range w {
		out = append(out, warning.Message)
	}
	return out
}
