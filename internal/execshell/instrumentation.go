package execshell

import "context"

// Scope names opened by the executor.
const (
	ScopeNameBuffered  = "execCommand"
	ScopeNameStreaming = "spawnCommand"
	ScopeNameSimple    = "execCommand"
)

// ScopeStatus is the final status reported for an instrumentation scope.
type ScopeStatus int

// Scope statuses.
const (
	ScopeStatusUnset ScopeStatus = iota
	ScopeStatusOK
	ScopeStatusError
)

// InstrumentationAttributes is attached to a scope once the operation completes.
type InstrumentationAttributes struct {
	WorkingDirectory string
	Shell            string
	Command          string
	StandardOutput   string
	StandardError    string
	ExitStatus       int
}

// Scope is a bounded unit of tracing context for one operation.
type Scope interface {
	SetAttributes(attributes InstrumentationAttributes)
	SetStatus(status ScopeStatus, description string)
	RecordError(failure error)
	End()
}

// Tracer opens instrumentation scopes.
type Tracer interface {
	StartScope(parentContext context.Context, name string) (context.Context, Scope)
}

// NoopTracer opens scopes that discard everything.
type NoopTracer struct{}

// StartScope implements Tracer.
func (NoopTracer) StartScope(parentContext context.Context, _ string) (context.Context, Scope) {
	return parentContext, noopScope{}
}

type noopScope struct{}

func (noopScope) SetAttributes(InstrumentationAttributes) {}

func (noopScope) SetStatus(ScopeStatus, string) {}

func (noopScope) RecordError(error) {}

func (noopScope) End() {}
