package execshell

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBufferedMaxAttemptsConstant = 3
	defaultBackoffStepConstant         = time.Second
	singleAttemptConstant              = 1
)

// RetryPolicy bounds how many times an operation runs and how long to wait between runs.
// The delay after attempt n is n*BackoffStep.
type RetryPolicy struct {
	MaxAttempts int
	BackoffStep time.Duration
}

// RetryNotification is invoked after a failed attempt that will be retried.
type RetryNotification func(attempt int, failure error, delay time.Duration)

// DefaultBufferedRetryPolicy returns three attempts one second apart, growing linearly.
func DefaultBufferedRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: defaultBufferedMaxAttemptsConstant, BackoffStep: defaultBackoffStepConstant}
}

// SingleAttemptRetryPolicy returns a policy that never retries.
func SingleAttemptRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: singleAttemptConstant}
}

// PermanentFailure marks err so that Execute stops retrying and returns it unchanged.
func PermanentFailure(err error) error {
	return backoff.Permanent(err)
}

// Execute runs operation until it succeeds, returns a PermanentFailure, the attempts are
// exhausted, or the context ends. A nil timer uses wall-clock timers.
func (policy RetryPolicy) Execute(executionContext context.Context, timer backoff.Timer, operation func(attempt int) error, notify RetryNotification) error {
	attempt := 0
	strategy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: policy.BackoffStep}, uint64(policy.attempts()-1)),
		executionContext,
	)

	attemptOperation := func() error {
		attempt++
		return operation(attempt)
	}

	notifier := func(failure error, delay time.Duration) {
		if notify != nil {
			notify(attempt, failure, delay)
		}
	}

	return backoff.RetryNotifyWithTimer(attemptOperation, strategy, notifier, timer)
}

func (policy RetryPolicy) attempts() int {
	if policy.MaxAttempts < singleAttemptConstant {
		return singleAttemptConstant
	}
	return policy.MaxAttempts
}

type linearBackOff struct {
	step     time.Duration
	attempts int
}

// NextBackOff implements backoff.BackOff.
func (linear *linearBackOff) NextBackOff() time.Duration {
	linear.attempts++
	return time.Duration(linear.attempts) * linear.step
}

// Reset implements backoff.BackOff.
func (linear *linearBackOff) Reset() {
	linear.attempts = 0
}
