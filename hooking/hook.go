// Package hooking lets observers attach to a cache and react to the accesses
// it processes.
package hooking

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered.
type HookCtx struct {
	// Domain is the hookable object that is raising this hook.
	Domain Hookable

	// Pos identifies where the hook is firing from.
	Pos *HookPos

	// Item carries the primary subject of the hook, usually a block ID.
	Item any

	// Detail holds optional auxiliary data; hook sites may leave it nil.
	Detail any
}

// Hookable defines an object that accept Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	//
	// Hooks must be registered before the hookable domain starts processing
	// accesses. Hooks cannot be removed.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook

	// InvokeHook triggers the registered Hooks.
	InvokeHook(ctx HookCtx)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// HookFunc adapts an ordinary function into a Hook.
type HookFunc func(ctx HookCtx)

// Func calls f(ctx).
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	hookList []Hook
}

// NewHookableBase creates a HookableBase object.
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.hookList = make([]Hook, 0)

	return h
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook register a hook. Registering the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveDuplicatedHook(hook)
	h.hookList = append(h.hookList, hook)
}

func (h *HookableBase) mustNotHaveDuplicatedHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); isFunc {
		// Function values are not comparable.
		return
	}

	for _, registered := range h.hookList {
		if _, isFunc := registered.(HookFunc); isFunc {
			continue
		}

		if registered == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the registered Hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
