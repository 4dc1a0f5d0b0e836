// Package execshell runs shell command lines on behalf of higher-level tooling.
//
// ShellExecutor exposes three strategies over a CommandRunner: RunBuffered
// retries launch failures and reports a LegacyExecutionOutcome, RunStreaming
// accumulates output chunks as the child emits them and fails with
// CommandFailure on a non-zero exit, and RunSimple executes once and always
// reports an ExecutionOutcome. CheckResult and FailOnNonZero turn outcomes into
// errors for callers that want failures escalated. Every operation opens one
// instrumentation Scope on the injected Tracer.
package execshell
