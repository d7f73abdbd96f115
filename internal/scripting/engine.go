package scripting

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed scripts/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM for gameplay formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm         *lua.LState
	scriptsDir string
	log        *zap.Logger
}

// NewEngine loads the built-in scripts, then every .lua file in scriptsDir
// (if set) so that files on disk override built-in functions.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm, err := newVM(scriptsDir, log)
	if err != nil {
		return nil, err
	}
	return &Engine{vm: vm, scriptsDir: scriptsDir, log: log}, nil
}

func newVM(scriptsDir string, log *zap.Logger) (*lua.LState, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	if err := loadFS(vm, builtin, "scripts", log); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := loadDir(vm, scriptsDir, log); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts %s: %w", scriptsDir, err)
		}
	}
	return vm, nil
}

func loadFS(vm *lua.LState, fsys fs.FS, dir string, log *zap.Logger) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		name := dir + "/" + entry.Name()
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if err := vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		log.Debug("loaded lua script", zap.String("file", name), zap.Bool("builtin", true))
	}
	return nil
}

// loadDir loads all .lua files in a directory, in name order.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload rebuilds the VM from scratch. On failure the running VM is kept
// and the error returned.
func (e *Engine) Reload() error {
	vm, err := newVM(e.scriptsDir, e.log)
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Info("lua scripts reloaded", zap.String("dir", e.scriptsDir))
	return nil
}

// ScriptsDir is the override directory, empty when only built-ins are used.
func (e *Engine) ScriptsDir() string { return e.scriptsDir }

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
