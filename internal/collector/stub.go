//go:build !cgo

package collector

import (
	"context"
	"errors"

	"github.com/huangsam/codetrend/schema"
)

// ErrNoCGO is returned when the collectors are unavailable due to missing CGO.
var ErrNoCGO = errors.New("python collectors require CGO (tree-sitter)")

// Available reports whether the tree-sitter collectors can run.
// Returns false when CGO is disabled.
func Available() bool {
	return false
}

func analyzeRaw(context.Context, []byte) (schema.Entry, error) {
	return schema.Entry{}, ErrNoCGO
}

func analyzeCyclomatic(context.Context, []byte) (schema.Entry, error) {
	return schema.Entry{}, ErrNoCGO
}

func analyzeMaintainability(context.Context, []byte) (schema.Entry, error) {
	return schema.Entry{}, ErrNoCGO
}

func analyzeHalstead(context.Context, []byte) (schema.Entry, error) {
	return schema.Entry{}, ErrNoCGO
}
