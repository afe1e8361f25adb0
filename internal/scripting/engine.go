package scripting

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

//go:embed scripts
var embedded embed.FS

// ErrNoFunction is returned when a hook names a function no script defines.
var ErrNoFunction = errors.New("lua function not found")

// Embedded returns the built-in scripts.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "scripts")
	if err != nil {
		panic(err)
	}
	return sub
}

// Dir returns the scripts in dir, or the built-in ones when dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// Engine wraps a single gopher-lua VM running use hooks.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads the core scripts, then the
// use hooks.
func NewEngine(fsys fs.FS, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLog))

	for _, sub := range []string{"core", "use"} {
		if err := e.loadDir(fsys, sub); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory. Missing dirs are skipped.
func (e *Engine) loadDir(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".lua" {
			continue
		}
		p := path.Join(dir, entry.Name())
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := e.DoString(p, string(src)); err != nil {
			return err
		}
		e.log.Debug("loaded lua script", zap.String("file", p))
	}
	return nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(name, src string) error {
	fn, err := e.vm.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Has reports whether a global function called name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// UseContext is handed to a use hook.
type UseContext struct {
	User, Target ecs.EntityID
	X, Y         int // target cell
	Map          string
	Level        int
	TargetName   string
}

// UseResult tells the caller which event a use hook asked for. An empty
// Event means nothing happens.
type UseResult struct {
	Event     string
	Map       string
	Level     int
	Generator string
}

// CallUse calls the Lua function name(ctx) and reads its result table.
func (e *Engine) CallUse(name string, ctx UseContext) (UseResult, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return UseResult{}, fmt.Errorf("%w: %s", ErrNoFunction, name)
	}

	t := e.vm.NewTable()
	t.RawSetString("user", lua.LNumber(ctx.User))
	t.RawSetString("target", lua.LNumber(ctx.Target))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("map", lua.LString(ctx.Map))
	t.RawSetString("level", lua.LNumber(ctx.Level))
	t.RawSetString("target_name", lua.LString(ctx.TargetName))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return UseResult{}, fmt.Errorf("lua %s: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch rt := result.(type) {
	case *lua.LTable:
		return UseResult{
			Event:     lStr(rt, "event"),
			Map:       lStr(rt, "map"),
			Level:     lInt(rt, "level"),
			Generator: lStr(rt, "generator"),
		}, nil
	case *lua.LNilType:
		return UseResult{}, nil
	default:
		return UseResult{}, fmt.Errorf("lua %s returned %s, want table", name, result.Type())
	}
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
