// Package tracing provides hooks that observe block caches and collect what
// they see.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/bblcache/blockcache"
	"github.com/sarchlab/bblcache/hooking"
)

// NamedHookable represent something both have a name and can be hooked
type NamedHookable interface {
	hooking.Hookable
	Name() string
}

// A Tracer is notified about every access a cache processes.
type Tracer interface {
	TraceAccess(domain string, access blockcache.Access)
}

// CollectTrace let the tracer to collect trace from a domain
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer, domain: domain.Name()}
	domain.AcceptHook(&h)
}

// A traceHook forwards cache accesses to a tracer.
type traceHook struct {
	t      Tracer
	domain string
}

// Func calls the tracer when an access completes.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != blockcache.HookPosAccess {
		return
	}

	h.t.TraceAccess(h.domain, ctx.Item.(blockcache.Access))
}
