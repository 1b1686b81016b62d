// Package resolver runs Lua scripts that turn a query into stream candidates.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/source"
	"github.com/spf13/viper"
	lua "github.com/yuin/gopher-lua"
)

// ErrNoStreams is returned when a script ran but produced no usable candidate.
var ErrNoStreams = errors.New("resolver returned no streams")

// Resolver is a loaded Lua script. A Lua state is single threaded, so calls are serialized.
type Resolver struct {
	name string
	path string

	mu    sync.Mutex
	state *lua.LState
}

var _ source.Resolver = (*Resolver)(nil)

// IDfromName returns the canonical identifier of the resolver script with the given basename.
func IDfromName(name string) string {
	return name + " lua"
}

// Name returns the resolver name, the script basename.
func (r *Resolver) Name() string {
	return r.name
}

// ID returns the resolver ID.
func (r *Resolver) ID() string {
	return IDfromName(r.name)
}

// Path returns the script location.
func (r *Resolver) Path() string {
	return r.path
}

func (r *Resolver) String() string {
	return r.name
}

// Close releases the Lua state.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Close()
}

// Streams calls the script's Streams function with query and decodes the returned table.
// Entries that cannot be decoded are logged and skipped; an error is returned only when none survive.
func (r *Resolver) Streams(ctx context.Context, query string) ([]*source.Candidate, error) {
	if timeout := viper.GetDuration(key.ResolversTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.SetContext(ctx)
	defer r.state.RemoveContext()

	val, err := r.call(constant.StreamsFn, lua.LTTable, lua.LString(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", r.name, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	candidates, errs := candidatesFromTable(val.(*lua.LTable))
	for _, err := range errs {
		log.WithField("resolver", r.name).Warnf("skipping stream: %s", err)
	}

	if len(candidates) == 0 {
		if len(errs) > 0 {
			return nil, fmt.Errorf("%s: %w", r.name, errs[0])
		}
		return nil, fmt.Errorf("%s: %w", r.name, ErrNoStreams)
	}

	log.Debugf("resolver %s produced %d streams for %q", r.name, len(candidates), query)
	return candidates, nil
}

// call executes a global Lua function in protected mode and checks the type of its single result.
func (r *Resolver) call(fn string, retType lua.LValueType, args ...lua.LValue) (lua.LValue, error) {
	luaFn := r.state.GetGlobal(fn)
	if luaFn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %s is not defined", fn)
	}

	err := r.state.CallByParam(lua.P{
		Fn:      luaFn,
		NRet:    1,
		Protect: true,
	}, args...)
	if err != nil {
		return nil, err
	}

	retval := r.state.Get(-1)
	r.state.Pop(1)

	if retval.Type() != retType {
		return nil, fmt.Errorf("%s returned %s, expected %s", fn, retval.Type(), retType)
	}

	return retval, nil
}
