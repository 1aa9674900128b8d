// Package funclib implements the function repository consumed by the
// resolver, plus a small library of builtin transformations that the CLI can
// bind function individuals to by name.
package funclib

import (
	"fmt"
	"sync"

	"github.com/xkilldash9x/maproute/api/schemas"
)

// Repo is an in-memory schemas.FunctionRepo.
type Repo struct {
	mu    sync.RWMutex
	funcs map[string]schemas.Function
	costs map[string]schemas.CostFunc
}

var _ schemas.FunctionRepo = (*Repo)(nil)

// NewRepo returns an empty repository.
func NewRepo() *Repo {
	return &Repo{
		funcs: make(map[string]schemas.Function),
		costs: make(map[string]schemas.CostFunc),
	}
}

// Register binds a callable to a function id, replacing any previous binding.
func (r *Repo) Register(id string, fn schemas.Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[id] = fn
}

// RegisterCost binds a cost callable to an id.
func (r *Repo) RegisterCost(id string, fn schemas.CostFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.costs[id] = fn
}

// RegisterBuiltin binds a function id to one of the named builtins.
func (r *Repo) RegisterBuiltin(id, builtin string) error {
	fn, ok := Builtins[builtin]
	if !ok {
		return fmt.Errorf("unknown builtin function '%s'", builtin)
	}
	r.Register(id, fn)
	return nil
}

func (r *Repo) Function(id string) (schemas.Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[id]
	return fn, ok
}

func (r *Repo) CostFunction(id string) (schemas.CostFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.costs[id]
	return fn, ok
}
