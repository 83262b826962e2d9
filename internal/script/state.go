// Package script runs Lua scenarios against a form store.
//
// A State owns one gopher-lua interpreter with a sandboxed standard library
// (base, table, string and math; no io, os, debug or module loading) and a
// global "form" table bound to the attached store. See form.go for the Lua
// API.
//
// gopher-lua states are not goroutine-safe. A State serializes calls from Go
// with a mutex; store callbacks that re-enter Lua run on the calling
// goroutine.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/formsync/internal/formstate"
	"github.com/dshills/formsync/internal/pathstore"
)

// DefaultTimeout bounds one DoString or DoFile call.
const DefaultTimeout = 5 * time.Second

// State is a Lua interpreter bound to a form store.
type State struct {
	L *lua.LState

	mu sync.Mutex

	store     *formstate.Store
	validator *lua.LFunction

	timeout time.Duration
	out     io.Writer
	log     *slog.Logger

	// ctx is the context of the running chunk, handed to store operations.
	ctx context.Context

	// callbackErrs collects errors raised by Lua callbacks that the store
	// invoked; they are returned when the chunk finishes.
	callbackErrs []error

	closed bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets how long one chunk may run. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a sandboxed Lua state. A store must be attached before a
// script touches the form table.
func New(opts ...Option) *State {
	s := &State{
		timeout: DefaultTimeout,
		out:     os.Stdout,
		log:     slog.New(slog.DiscardHandler),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.installPrint()
	s.installForm()
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint replaces print so output goes to the configured writer.
func (s *State) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// Attach binds the form table to store. The store should be built with
// Validator so form.validator takes effect.
func (s *State) Attach(store *formstate.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// Validator returns a validator that delegates to the function the script
// registers with form.validator. Until one is registered every value is
// valid.
func (s *State) Validator() formstate.Validator {
	return formstate.ValidatorFunc(s.validate)
}

// DoString executes a chunk.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.do(ctx, func() error { return s.L.DoString(code) })
}

// DoFile executes a file.
func (s *State) DoFile(ctx context.Context, path string) error {
	return s.do(ctx, func() error { return s.L.DoFile(path) })
}

func (s *State) do(ctx context.Context, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.ctx = ctx
	s.callbackErrs = nil
	s.L.SetContext(ctx)
	defer func() {
		s.L.RemoveContext()
		s.ctx = context.Background()
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	runErr := fn()
	if ctxErr := ctx.Err(); runErr != nil && ctxErr != nil {
		runErr = fmt.Errorf("%w: %v", ctxErr, runErr)
	}
	return errors.Join(append([]error{runErr}, s.callbackErrs...)...)
}

// GetGlobal returns a global variable converted to a Go value.
func (s *State) GetGlobal(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return toGo(s.L.GetGlobal(name))
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the interpreter. The attached store is left open.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	s.validator = nil
	return nil
}

// call invokes a Lua function from Go and returns its nret results.
func (s *State) call(fn *lua.LFunction, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	top := s.L.GetTop()
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		return nil, err
	}
	n := s.L.GetTop() - top
	out := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		out[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(n)
	return out, nil
}

// notify invokes an observer callback. Errors are reported when the running
// chunk returns.
func (s *State) notify(fn *lua.LFunction, args ...lua.LValue) {
	if s.closed {
		return
	}
	if _, err := s.call(fn, 0, args...); err != nil {
		s.callbackErrs = append(s.callbackErrs, err)
		s.log.Warn("lua callback failed", "err", err)
	}
}

// validate runs the registered Lua validator. It is called by the store
// while a chunk is running, so the interpreter is already held.
func (s *State) validate(_ context.Context, req formstate.ValidationRequest) (map[string]any, error) {
	if s.validator == nil || s.closed {
		return nil, nil
	}
	L := s.L
	arg := L.CreateTable(0, 4)
	arg.RawSetString("path", lua.LString(req.Path))
	arg.RawSetString("value", toLua(L, req.Value))
	arg.RawSetString("values", toLua(L, req.Values))
	arg.RawSetString("rules", toLua(L, req.Rules))

	ret, err := s.call(s.validator, 2, arg)
	if err != nil {
		return nil, err
	}
	if msg := ret[1]; msg != lua.LNil {
		return nil, errors.New(msg.String())
	}
	switch flat := toGo(ret[0]).(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return errorTree(req.Values, flat)
	default:
		return nil, fmt.Errorf("validator returned %T, want a table", flat)
	}
}

// errorTree expands a table keyed by field path into an error tree anchored
// at the form root. Numeric segments follow the container shape of values.
func errorTree(values, flat map[string]any) (map[string]any, error) {
	tree := map[string]any{}
	for _, name := range sortedKeys(flat) {
		p, err := pathstore.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("validator result: %w", err)
		}
		v := fieldErrors(flat[name])
		if p.IsRoot() {
			p = pathstore.Path{pathstore.Key(formstate.RootErrorKey)}
		}
		pathstore.Set(tree, pathstore.Resolve(values, p), v)
	}
	return tree, nil
}

// fieldErrors turns tables carrying a string "type" field into FieldError
// values, recursively.
func fieldErrors(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if typ, ok := m["type"].(string); ok {
		fe := formstate.FieldError{Type: typ}
		fe.Message, _ = m["message"].(string)
		fe.Params, _ = m["params"].(map[string]any)
		return fe
	}
	out := make(map[string]any, len(m))
	for k, child := range m {
		out[k] = fieldErrors(child)
	}
	return out
}
