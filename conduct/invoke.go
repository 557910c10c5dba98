package conduct

import (
	"context"

	"github.com/reggeenr/openwhisk-composer/compose"
)

// Future represents an in-flight remote action invocation: the deployment
// and invocation of the named action are the host's responsibility, not
// this package's (see the Non-goals around action deployment and remote
// invocation). A Future only needs to resolve to a result or an error.
type Future interface {
	Await(ctx context.Context) (any, error)
}

// ActionInvoker is an optional synchronous escape hatch for running
// actions in-process, useful for tests and embedding scenarios that don't
// want to round-trip through the host's $resume protocol for every single
// action step. When a Conductor has no ActionInvoker, it suspends at every
// sync Action state and lets the host drive invocation and resumption; an
// async Action state then fails with ErrNoInvoker.
type ActionInvoker interface {
	Invoke(ctx context.Context, name string, options *compose.ActionOptions, input any) (Future, error)
}

// SyncInvoker adapts a plain function into an ActionInvoker whose Future
// is already resolved, for tests that don't need real asynchrony.
type SyncInvoker func(ctx context.Context, name string, options *compose.ActionOptions, input any) (any, error)

func (f SyncInvoker) Invoke(ctx context.Context, name string, options *compose.ActionOptions, input any) (Future, error) {
	result, err := f(ctx, name, options, input)
	if err != nil {
		return nil, err
	}
	return resolvedFuture{result}, nil
}

type resolvedFuture struct{ value any }

func (r resolvedFuture) Await(ctx context.Context) (any, error) { return r.value, nil }
