package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/zen-systems/intentgate/pkg/adapter"
	"github.com/zen-systems/intentgate/pkg/format"
	"github.com/zen-systems/intentgate/pkg/pipeline"
	"github.com/zen-systems/intentgate/pkg/router"
	"github.com/zen-systems/intentgate/pkg/tools"
)

// Failure kinds used by the severity table.
const (
	KindSystem    = "SystemError"
	KindMemory    = "MemoryError"
	KindOS        = "OSError"
	KindRuntime   = "RuntimeError"
	KindValue     = "ValueError"
	KindKey       = "KeyError"
	KindAttribute = "AttributeError"
	KindType      = "TypeError"
	KindImport    = "ImportError"
	KindTimeout   = "TimeoutError"
	KindCancelled = "CancelledError"
)

// Failure is a classified error: what kind it is, what it said and which
// component raised it.
type Failure struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
}

// Error implements error.
func (f *Failure) Error() string {
	if f.Kind == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// FromError classifies err. The kind comes from the error's type or, for
// known sentinels, its identity; anything unrecognised is named after the
// innermost error's Go type.
func FromError(err error, component string) Failure {
	if err == nil {
		return Failure{Component: component}
	}
	f := Failure{Message: err.Error(), Component: component}

	var failure *Failure
	var adapterErr *adapter.AdapterError
	var pathErr *fs.PathError
	var syscallErr *os.SyscallError
	var linkErr *os.LinkError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError

	switch {
	case errors.As(err, &failure):
		f.Kind = failure.Kind
		f.Message = failure.Message
		if failure.Component != "" {
			f.Component = failure.Component
		}
	case errors.Is(err, context.DeadlineExceeded):
		f.Kind = KindTimeout
	case errors.Is(err, context.Canceled):
		f.Kind = KindCancelled
	case errors.Is(err, router.ErrUnknownTaskType), errors.Is(err, tools.ErrUnknownToolSet):
		f.Kind = KindKey
	case errors.Is(err, pipeline.ErrNoAdapter), errors.Is(err, pipeline.ErrNoAdapters):
		f.Kind = KindRuntime
	case errors.Is(err, router.ErrEmptyRequest), errors.Is(err, pipeline.ErrEmptyPlan):
		f.Kind = KindValue
	case errors.Is(err, format.ErrUnsupportedContent):
		f.Kind = KindType
	case errors.As(err, &adapterErr):
		f.Kind = KindRuntime
	case errors.As(err, &pathErr), errors.As(err, &syscallErr), errors.As(err, &linkErr):
		f.Kind = KindOS
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &numErr):
		f.Kind = KindValue
	default:
		f.Kind = typeName(err)
	}
	return f
}

func typeName(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
