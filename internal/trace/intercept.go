package trace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FuncInfo describes an instrumented callable at registration time. Params
// lists the declared parameter names in order; Source is an optional static
// snapshot of the callable's defining source.
type FuncInfo struct {
	Name     string
	Location string
	Params   []string
	Source   string
}

// Fn is the uniform shape of an instrumented callable: named inputs in,
// one value out. A returned error propagates to the caller unmodified and
// leaves no trace behind.
type Fn func(ctx context.Context, inputs Inputs) (any, error)

// Wrapped is a call-compatible wrapper around an instrumented callable.
// Invoking it is observably identical to invoking the callable directly,
// except that each completed invocation appends one Record to the Store
// carried by the call context (or the process default).
type Wrapped struct {
	info FuncInfo
	fn   Fn
}

// Instrument registers fn under the supplied metadata and returns the
// wrapper. A missing source snippet is replaced with a placeholder rather
// than failing registration.
func Instrument(info FuncInfo, fn Fn) *Wrapped {
	if strings.TrimSpace(info.Source) == "" {
		info.Source = SourceUnavailable
	}
	return &Wrapped{info: info, fn: fn}
}

// Info returns the registration metadata.
func (w *Wrapped) Info() FuncInfo {
	return w.info
}

// Call binds positional and named arguments to the declared parameter
// names, invokes the callable, and appends a Record on success. Failures
// from the callable are returned unmodified and produce no Record.
func (w *Wrapped) Call(ctx context.Context, positional []any, named map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	inputs := BindInputs(w.info.Params, positional, named)

	start := time.Now()
	output, err := w.fn(ctx, inputs)
	end := time.Now()
	if err != nil {
		return nil, err
	}

	durationMS := float64(end.Sub(start)) / float64(time.Millisecond)
	if durationMS < 0 {
		durationMS = 0
	}
	storeFor(ctx).Append(&Record{
		ID:         uuid.NewString(),
		Function:   w.info.Name,
		Location:   w.info.Location,
		Inputs:     inputs,
		Output:     output,
		SourceText: w.info.Source,
		StartTime:  start,
		EndTime:    end,
		DurationMS: durationMS,
	})
	return output, nil
}

// BindInputs maps positional arguments to the first declared parameters in
// order, then overlays named arguments; a named argument wins when both
// supply the same parameter. The result holds exactly the declared
// parameters that were supplied, in declaration order.
func BindInputs(params []string, positional []any, named map[string]any) Inputs {
	inputs := make(Inputs, 0, len(params))
	for i, param := range params {
		if value, ok := named[param]; ok {
			inputs = append(inputs, Input{Name: param, Value: value})
			continue
		}
		if i < len(positional) {
			inputs = append(inputs, Input{Name: param, Value: positional[i]})
		}
	}
	return inputs
}

// FuncSource cuts the named top-level function out of a source file
// snapshot (typically provided via go:embed). It returns the placeholder
// when the function cannot be located.
func FuncSource(fileSource, funcName string) string {
	marker := "\nfunc " + funcName + "("
	start := strings.Index(fileSource, marker)
	if start < 0 {
		if strings.HasPrefix(fileSource, marker[1:]) {
			start = -1 // function opens the file
		} else {
			return SourceUnavailable
		}
	}
	snippet := fileSource[start+1:]
	if end := strings.Index(snippet, "\nfunc "); end >= 0 {
		snippet = snippet[:end]
	}
	return strings.TrimRight(snippet, "\n") + "\n"
}
