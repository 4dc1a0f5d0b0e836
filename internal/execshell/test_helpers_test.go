package execshell_test

import (
	"context"
	"sync"
	"time"

	"github.com/temirov/cmdrun/internal/execshell"
)

type runnerResponse struct {
	outcome execshell.ExecutionOutcome
	err     error
}

// scriptedCommandRunner replays responses in order and repeats the last one once exhausted.
type scriptedCommandRunner struct {
	mutex            sync.Mutex
	responses        []runnerResponse
	recordedCommands []execshell.ShellCommand
	bufferedCalls    int
	streamedCalls    int
}

func newScriptedCommandRunner(responses ...runnerResponse) *scriptedCommandRunner {
	return &scriptedCommandRunner{responses: responses}
}

func (runner *scriptedCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionOutcome, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.bufferedCalls++
	return runner.next(command)
}

func (runner *scriptedCommandRunner) Stream(executionContext context.Context, command execshell.ShellCommand, observer execshell.OutputObserver) (execshell.ExecutionOutcome, error) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.streamedCalls++
	outcome, err := runner.next(command)
	if observer != nil {
		if len(outcome.StandardOutput) > 0 {
			observer.OutputReceived(execshell.OutputStreamStandardOutput, outcome.StandardOutput)
		}
		if len(outcome.StandardError) > 0 {
			observer.OutputReceived(execshell.OutputStreamStandardError, outcome.StandardError)
		}
	}
	return outcome, err
}

func (runner *scriptedCommandRunner) next(command execshell.ShellCommand) (execshell.ExecutionOutcome, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	if len(runner.responses) == 0 {
		return execshell.ExecutionOutcome{}, nil
	}
	responseIndex := len(runner.recordedCommands) - 1
	if responseIndex >= len(runner.responses) {
		responseIndex = len(runner.responses) - 1
	}
	response := runner.responses[responseIndex]
	return response.outcome, response.err
}

type recordedScope struct {
	name         string
	attributes   []execshell.InstrumentationAttributes
	statuses     []execshell.ScopeStatus
	descriptions []string
	errors       []error
	ended        bool
}

func (scope *recordedScope) SetAttributes(attributes execshell.InstrumentationAttributes) {
	scope.attributes = append(scope.attributes, attributes)
}

func (scope *recordedScope) SetStatus(status execshell.ScopeStatus, description string) {
	scope.statuses = append(scope.statuses, status)
	scope.descriptions = append(scope.descriptions, description)
}

func (scope *recordedScope) RecordError(failure error) {
	scope.errors = append(scope.errors, failure)
}

func (scope *recordedScope) End() {
	scope.ended = true
}

type recordingTracer struct {
	scopes []*recordedScope
}

func (tracer *recordingTracer) StartScope(parentContext context.Context, name string) (context.Context, execshell.Scope) {
	scope := &recordedScope{name: name}
	tracer.scopes = append(tracer.scopes, scope)
	return parentContext, scope
}

// recordingTimer fires immediately and remembers every requested delay.
type recordingTimer struct {
	durations []time.Duration
	channel   chan time.Time
}

func newRecordingTimer() *recordingTimer {
	return &recordingTimer{channel: make(chan time.Time, 1)}
}

func (timer *recordingTimer) Start(duration time.Duration) {
	timer.durations = append(timer.durations, duration)
	timer.channel <- time.Now()
}

func (timer *recordingTimer) Stop() {}

func (timer *recordingTimer) C() <-chan time.Time {
	return timer.channel
}

type recordingOutputObserver struct {
	mutex  sync.Mutex
	chunks map[execshell.OutputStream][]string
}

func newRecordingOutputObserver() *recordingOutputObserver {
	return &recordingOutputObserver{chunks: map[execshell.OutputStream][]string{}}
}

func (observer *recordingOutputObserver) OutputReceived(stream execshell.OutputStream, chunk string) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.chunks[stream] = append(observer.chunks[stream], chunk)
}

func (observer *recordingOutputObserver) joined(stream execshell.OutputStream) string {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	joinedOutput := ""
	for _, chunk := range observer.chunks[stream] {
		joinedOutput += chunk
	}
	return joinedOutput
}
