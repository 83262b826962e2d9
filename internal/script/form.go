package script

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/formsync/internal/event"
	"github.com/dshills/formsync/internal/formstate"
)

// The global form table:
//
//	form.set_value(path, value [, {validate=, touch=}])
//	form.change(path, value)
//	form.get([path...])                 whole tree without arguments
//	form.register(path [, rules])       returns an unregister function
//	form.blur(path)
//	form.set_error(path, type [, message])
//	form.clear_errors([path...])
//	form.trigger([path...])             returns valid
//	form.reset([values [, keep]])       keep: {errors=, dirty=, touched=, is_valid=,
//	                                      is_submitted=, submit_count=,
//	                                      default_values=, values=}
//	form.field_array(name)              see fieldArrayMethods
//	form.watch(path|nil, fn(name, kind))         returns an unsubscribe function
//	form.on_state(fn(changed, name) [, interest]) returns an unsubscribe function
//	form.validator(fn(req) -> errors [, failure])
//	form.declare({dirty=, touched=, validity=})
//	form.snapshot()
//	form.field_state(path)
//	form.is_dirty(path)
//	form.registered()
//	form.stats()
//	form.submit([fn(values) -> failure]) returns ok [, failure]
//
// Array indices are zero-based, matching field paths such as "items.0.name".
// A validator returns a table keyed by field path; values are messages or
// {type=, message=, params=} tables.

const fieldArrayType = "form.field_array"

func (s *State) installForm() {
	L := s.L

	mt := L.NewTypeMetatable(fieldArrayType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), s.fieldArrayMethods()))

	L.SetGlobal("form", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"set_value":    s.luaSetValue,
		"change":       s.luaChange,
		"get":          s.luaGet,
		"register":     s.luaRegister,
		"blur":         s.luaBlur,
		"set_error":    s.luaSetError,
		"clear_errors": s.luaClearErrors,
		"trigger":      s.luaTrigger,
		"reset":        s.luaReset,
		"field_array":  s.luaFieldArray,
		"watch":        s.luaWatch,
		"on_state":     s.luaOnState,
		"validator":    s.luaValidator,
		"declare":      s.luaDeclare,
		"snapshot":     s.luaSnapshot,
		"field_state":  s.luaFieldState,
		"is_dirty":     s.luaIsDirty,
		"registered":   s.luaRegistered,
		"stats":        s.luaStats,
		"submit":       s.luaSubmit,
	}))
}

func raise(L *lua.LState, err error) int {
	L.RaiseError("%s", err.Error())
	return 0
}

// form returns the attached store or raises.
func (s *State) form(L *lua.LState) *formstate.Store {
	if s.store == nil {
		raise(L, ErrNotAttached)
	}
	return s.store
}

func stringArgs(L *lua.LState, from int) []string {
	var out []string
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, L.CheckString(i))
	}
	return out
}

func valueArgs(L *lua.LState, from int) []any {
	var out []any
	for i := from; i <= L.GetTop(); i++ {
		out = append(out, toGo(L.Get(i)))
	}
	return out
}

func (s *State) luaSetValue(L *lua.LState) int {
	store := s.form(L)
	opts := L.OptTable(3, nil)
	err := store.SetValue(s.ctx, L.CheckString(1), toGo(L.Get(2)), formstate.SetValueOptions{
		ShouldValidate: tableBool(opts, "validate"),
		ShouldTouch:    tableBool(opts, "touch"),
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaChange(L *lua.LState) int {
	if err := s.form(L).Change(s.ctx, L.CheckString(1), toGo(L.Get(2))); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaGet(L *lua.LState) int {
	L.Push(toLua(L, s.form(L).GetValues(stringArgs(L, 1)...)))
	return 1
}

func (s *State) luaRegister(L *lua.LState) int {
	unregister, err := s.form(L).Register(L.CheckString(1), toGo(L.Get(2)))
	if err != nil {
		return raise(L, err)
	}
	L.Push(L.NewFunction(func(*lua.LState) int {
		unregister()
		return 0
	}))
	return 1
}

func (s *State) luaBlur(L *lua.LState) int {
	if err := s.form(L).Blur(s.ctx, L.CheckString(1)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaSetError(L *lua.LState) int {
	fe := formstate.FieldError{Type: L.CheckString(2), Message: L.OptString(3, "")}
	if err := s.form(L).SetError(s.ctx, L.CheckString(1), fe); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaClearErrors(L *lua.LState) int {
	if err := s.form(L).ClearErrors(s.ctx, stringArgs(L, 1)...); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaTrigger(L *lua.LState) int {
	ok, err := s.form(L).Trigger(s.ctx, stringArgs(L, 1)...)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (s *State) luaReset(L *lua.LState) int {
	store := s.form(L)
	var values map[string]any
	if t := L.OptTable(1, nil); t != nil {
		values, _ = toGo(t).(map[string]any)
		if values == nil {
			values = map[string]any{}
		}
	}
	keep := L.OptTable(2, nil)
	err := store.Reset(s.ctx, values, formstate.KeepStateOptions{
		KeepErrors:        tableBool(keep, "errors"),
		KeepDirty:         tableBool(keep, "dirty"),
		KeepTouched:       tableBool(keep, "touched"),
		KeepIsValid:       tableBool(keep, "is_valid"),
		KeepIsSubmitted:   tableBool(keep, "is_submitted"),
		KeepSubmitCount:   tableBool(keep, "submit_count"),
		KeepDefaultValues: tableBool(keep, "default_values"),
		KeepValues:        tableBool(keep, "values"),
	})
	if err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *State) luaWatch(L *lua.LState) int {
	store := s.form(L)
	var names []string
	if !lua.LVIsFalse(L.Get(1)) {
		names = append(names, L.CheckString(1))
	}
	fn := L.CheckFunction(2)
	sub, err := store.Watch(func(e formstate.WatchEvent) {
		s.notify(fn, lua.LString(e.Name), lua.LString(e.Kind.String()))
	}, names...)
	if err != nil {
		return raise(L, err)
	}
	return pushCancel(L, sub)
}

func (s *State) luaOnState(L *lua.LState) int {
	store := s.form(L)
	fn := L.CheckFunction(1)
	in := interestOf(L.OptTable(2, nil))
	sub, err := store.SubscribeState(in, func(e formstate.StateEvent) {
		s.notify(fn, lua.LString(e.Changed.String()), lua.LString(e.Name))
	})
	if err != nil {
		return raise(L, err)
	}
	return pushCancel(L, sub)
}

func pushCancel(L *lua.LState, sub event.Subscription) int {
	L.Push(L.NewFunction(func(*lua.LState) int {
		sub.Cancel()
		return 0
	}))
	return 1
}

func (s *State) luaValidator(L *lua.LState) int {
	if L.Get(1) == lua.LNil {
		s.validator = nil
		return 0
	}
	s.validator = L.CheckFunction(1)
	return 0
}

func interestOf(t *lua.LTable) formstate.Interest {
	return formstate.Interest{
		Dirty:    tableBool(t, "dirty"),
		Touched:  tableBool(t, "touched"),
		Validity: tableBool(t, "validity"),
	}
}

func (s *State) luaDeclare(L *lua.LState) int {
	s.form(L).Declare(interestOf(L.CheckTable(1)))
	return 0
}

func (s *State) luaSnapshot(L *lua.LState) int {
	L.Push(toLua(L, s.form(L).Snapshot()))
	return 1
}

func (s *State) luaFieldState(L *lua.LState) int {
	L.Push(toLua(L, s.form(L).GetFieldState(L.CheckString(1))))
	return 1
}

func (s *State) luaIsDirty(L *lua.LState) int {
	L.Push(lua.LBool(s.form(L).GetIsDirty(L.OptString(1, ""))))
	return 1
}

func (s *State) luaRegistered(L *lua.LState) int {
	names := s.form(L).Registered()
	t := L.CreateTable(len(names), 0)
	for i, n := range names {
		t.RawSetInt(i+1, lua.LString(n))
	}
	L.Push(t)
	return 1
}

func (s *State) luaStats(L *lua.LState) int {
	st := s.form(L).Stats()
	t := L.CreateTable(0, 4)
	t.RawSetString("dirty_checks", lua.LNumber(st.DirtyChecks))
	t.RawSetString("validity_runs", lua.LNumber(st.ValidityRuns))
	t.RawSetString("validations", lua.LNumber(st.Validations))
	t.RawSetString("publishes", lua.LNumber(st.Publishes))
	L.Push(t)
	return 1
}

// errSubmitRejected carries the failure a Lua submit handler returned.
var errSubmitRejected = errors.New("submit handler failed")

func (s *State) luaSubmit(L *lua.LState) int {
	store := s.form(L)
	var onValid formstate.SubmitFunc
	if fn := L.OptFunction(1, nil); fn != nil {
		onValid = func(_ context.Context, values map[string]any) error {
			ret, err := s.call(fn, 1, toLua(L, values))
			if err != nil {
				return err
			}
			if lua.LVIsFalse(ret[0]) {
				return nil
			}
			return fmt.Errorf("%w: %s", errSubmitRejected, ret[0].String())
		}
	}
	ok, err := store.Submit(s.ctx, onValid)
	L.Push(lua.LBool(ok && err == nil))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

// fieldArrayMethods are called with colon syntax on a field array:
//
//	arr:append(item...)      arr:prepend(item...)
//	arr:insert(i, item...)   arr:remove([i...])
//	arr:swap(i, j)           arr:move(from, to)
//	arr:replace(item...)     arr:update(i, item)
//	arr:fields()             list of {key=, value=}
//	arr:len()                arr:name()
//	arr:on_change(fn(fields, is_reset))  returns an unsubscribe function
func (s *State) fieldArrayMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"append": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Append(s.ctx, valueArgs(L, 2)...)
			})
		},
		"prepend": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Prepend(s.ctx, valueArgs(L, 2)...)
			})
		},
		"insert": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Insert(s.ctx, L.CheckInt(2), valueArgs(L, 3)...)
			})
		},
		"remove": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				var indices []int
				for i := 2; i <= L.GetTop(); i++ {
					indices = append(indices, L.CheckInt(i))
				}
				return fa.Remove(s.ctx, indices...)
			})
		},
		"swap": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Swap(s.ctx, L.CheckInt(2), L.CheckInt(3))
			})
		},
		"move": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Move(s.ctx, L.CheckInt(2), L.CheckInt(3))
			})
		},
		"replace": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Replace(s.ctx, valueArgs(L, 2)...)
			})
		},
		"update": func(L *lua.LState) int {
			return s.arrayOp(L, func(fa *formstate.FieldArray) error {
				return fa.Update(s.ctx, L.CheckInt(2), toGo(L.Get(3)))
			})
		},
		"fields": func(L *lua.LState) int {
			L.Push(toLua(L, checkFieldArray(L).Fields()))
			return 1
		},
		"len": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkFieldArray(L).Len()))
			return 1
		},
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkFieldArray(L).Name()))
			return 1
		},
		"on_change": func(L *lua.LState) int {
			fa := checkFieldArray(L)
			fn := L.CheckFunction(2)
			sub, err := fa.Subscribe(func(e formstate.ArrayEvent) {
				s.notify(fn, toLua(s.L, e.Fields), lua.LBool(e.IsReset))
			})
			if err != nil {
				return raise(L, err)
			}
			return pushCancel(L, sub)
		},
	}
}

func (s *State) luaFieldArray(L *lua.LState) int {
	fa, err := s.form(L).FieldArray(L.CheckString(1))
	if err != nil {
		return raise(L, err)
	}
	ud := L.NewUserData()
	ud.Value = fa
	L.SetMetatable(ud, L.GetTypeMetatable(fieldArrayType))
	L.Push(ud)
	return 1
}

func checkFieldArray(L *lua.LState) *formstate.FieldArray {
	ud := L.CheckUserData(1)
	fa, ok := ud.Value.(*formstate.FieldArray)
	if !ok {
		L.ArgError(1, "field array expected")
	}
	return fa
}

func (s *State) arrayOp(L *lua.LState, op func(*formstate.FieldArray) error) int {
	if err := op(checkFieldArray(L)); err != nil {
		return raise(L, err)
	}
	return 0
}
