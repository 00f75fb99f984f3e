package procdef

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/roach88/procforge/internal/proc"
)

// luaFields are the keys a Proc table may carry.
var luaFields = map[string]bool{
	"name":        true,
	"trigger":     true,
	"icd_ms":      true,
	"duration_ms": true,
	"magnitude":   true,
	"max_stacks":  true,
	"stack_rule":  true,
	"param":       true,
}

// luaProc holds a Proc table before conversion.
type luaProc struct {
	name  string
	table *lua.LTable
	line  int
}

// decodeLua executes a definition script in a sandboxed VM and collects
// every Proc constructor call:
//
//	Proc "BurningAegis" {
//	    trigger = ON_BLOCK, icd_ms = 500, duration_ms = 6000,
//	    magnitude = 12, max_stacks = 3, stack_rule = STACK,
//	}
//
// Trigger and stack rule names are also available as globals. The VM is
// discarded after loading.
func decodeLua(data []byte, source string) ([]decoded, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	var procs []luaProc
	registerProcAPI(L, &procs)

	fn, err := L.Load(bytes.NewReader(data), source)
	if err != nil {
		return nil, err
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}

	out := make([]decoded, 0, len(procs))
	for i, p := range procs {
		rec, err := luaRecord(p)
		out = append(out, decoded{index: i, line: p.line, record: rec, err: err})
	}
	return out, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the script.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Definitions must not depend on a random seed.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

func registerProcAPI(L *lua.LState, procs *[]luaProc) {
	// Proc "name" { ... }: curried, Proc("name") returns a function that takes a table.
	// Proc { name = "...", ... } is accepted too.
	L.SetGlobal("Proc", L.NewFunction(func(L *lua.LState) int {
		line := L.Where(1)
		if tbl, ok := L.Get(1).(*lua.LTable); ok {
			*procs = append(*procs, luaProc{table: tbl, line: whereLine(line)})
			return 0
		}
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*procs = append(*procs, luaProc{name: name, table: tbl, line: whereLine(line)})
			return 0
		}))
		return 1
	}))

	for _, name := range proc.TriggerNames() {
		L.SetGlobal(name, lua.LString(name))
	}
	for _, name := range proc.StackRuleNames() {
		L.SetGlobal(name, lua.LString(name))
	}
}

// luaRecord converts a collected table. Unknown keys and non-integer
// numbers are decode errors.
func luaRecord(p luaProc) (Record, error) {
	rec := Record{Name: p.name}
	var problems []string

	p.table.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok || !luaFields[string(key)] {
			problems = append(problems, fmt.Sprintf("unknown field %s", k.String()))
		}
	})
	sort.Strings(problems)

	if s, ok, err := luaString(p.table, "name"); err != nil {
		problems = append(problems, err.Error())
	} else if ok {
		rec.Name = s
	}
	var err error
	if rec.Trigger, _, err = luaString(p.table, "trigger"); err != nil {
		problems = append(problems, err.Error())
	}
	if rec.StackRule, _, err = luaString(p.table, "stack_rule"); err != nil {
		problems = append(problems, err.Error())
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"icd_ms", &rec.ICDMs},
		{"duration_ms", &rec.DurationMs},
		{"magnitude", &rec.Magnitude},
		{"max_stacks", &rec.MaxStacks},
		{"param", &rec.Param},
	}
	for _, f := range ints {
		if *f.dst, err = luaInt(p.table, f.key); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return rec, errors.New(strings.Join(problems, "; "))
	}
	return rec, nil
}

func luaString(tbl *lua.LTable, key string) (string, bool, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return "", false, nil
	case lua.LString:
		return string(v), true, nil
	default:
		return "", false, fmt.Errorf("%s: expected string, got %s", key, v.Type())
	}
}

func luaInt(tbl *lua.LTable, key string) (int, error) {
	switch v := tbl.RawGetString(key).(type) {
	case *lua.LNilType:
		return 0, nil
	case lua.LNumber:
		f := float64(v)
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, fmt.Errorf("%s: expected an integer, got %s", key, v.String())
		}
		return int(f), nil
	default:
		return 0, fmt.Errorf("%s: expected number, got %s", key, v.Type())
	}
}

// whereLine extracts the line number from an LState.Where string
// ("chunk:line:").
func whereLine(where string) int {
	parts := strings.Split(strings.TrimSuffix(where, ":"), ":")
	if len(parts) < 2 {
		return 0
	}
	var line int
	if _, err := fmt.Sscanf(parts[len(parts)-1], "%d", &line); err != nil {
		return 0
	}
	return line
}
