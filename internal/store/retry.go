package store

import (
	"errors"
	"math/rand"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/ash/internal/config"
)

// DefaultMaxRetries applies when DB_MAX_RETRIES is unset or not positive.
const DefaultMaxRetries = 5

// RetryPolicy bounds how long a statement waits out lock contention.
type RetryPolicy struct {
	// MaxRetries is the number of attempts allowed after the first.
	MaxRetries int

	// FixedBackoff is slept before every retry.
	FixedBackoff time.Duration

	// RandomBackoff bounds the uniform jitter added to FixedBackoff.
	RandomBackoff time.Duration
}

// PolicyFromConfig reads DB_MAX_RETRIES, DB_FAIL_TIMEOUT and
// DB_FAIL_RANDOM_TIMEOUT (milliseconds).
func PolicyFromConfig(cfg config.Provider) RetryPolicy {
	p := RetryPolicy{MaxRetries: DefaultMaxRetries}
	if cfg == nil {
		return p
	}
	if n := cfg.GetInt(config.KeyDBMaxRetries, -1); n > 0 {
		p.MaxRetries = n
	}
	if ms := cfg.GetInt(config.KeyDBFailTimeout, -1); ms > 0 {
		p.FixedBackoff = time.Duration(ms) * time.Millisecond
	}
	if ms := cfg.GetInt(config.KeyDBFailRandomTimeout, -1); ms > 0 {
		p.RandomBackoff = time.Duration(ms) * time.Millisecond
	}
	return p
}

// Backoff returns FixedBackoff plus a whole number of milliseconds drawn
// uniformly from [0, RandomBackoff). intN has the contract of rand.IntN.
func (p RetryPolicy) Backoff(intN func(int) int) time.Duration {
	d := p.FixedBackoff
	if ms := int(p.RandomBackoff / time.Millisecond); ms > 0 {
		d += time.Duration(intN(ms)) * time.Millisecond
	}
	return d
}

// Clock is the time source used for backoff sleeps.
// Now must carry a monotonic reading.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// outcome classifies a driver error for the retry loop.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeBusy
	outcomeConstraint
	outcomeFatal
)

func classify(err error) outcome {
	if err == nil {
		return outcomeDone
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return outcomeBusy
		case sqlite3.ErrConstraint:
			return outcomeConstraint
		}
	}
	return outcomeFatal
}

// retry runs attempt until it succeeds, hits a constraint violation, or
// fails permanently. Busy and locked errors are retried after a backoff,
// at most policy.MaxRetries times. The policy is read fresh on each call.
//
// constrained is true when the statement stopped on a constraint violation;
// that case is not an error.
func (s *Store) retry(statement string, attempt func() error) (constrained bool, err error) {
	policy := PolicyFromConfig(s.cfg)

	for n := 1; ; n++ {
		err := attempt()
		switch classify(err) {
		case outcomeDone:
			return false, nil

		case outcomeConstraint:
			s.logger.Debug("constraint violation", "statement", statement, "error", err)
			return true, nil

		case outcomeBusy:
			if n > policy.MaxRetries {
				return false, &Error{
					Code:      ErrCodeRetriesExhausted,
					Message:   "failed to unlock db",
					Path:      s.path,
					Statement: statement,
					Attempts:  n,
					Err:       err,
				}
			}
			s.logger.Warn("database was locked",
				"tries_remaining", policy.MaxRetries-n+1,
				"error", err,
			)
			s.sleep(policy, policy.Backoff(s.intN))
			continue

		default:
			return false, &Error{
				Code:      ErrCodeUnexpected,
				Message:   "unexpected store error",
				Path:      s.path,
				Statement: statement,
				Attempts:  n,
				Err:       err,
			}
		}
	}
}

// sleep waits for d against the monotonic clock. A short wake resumes with
// the remaining time; at most 2*MaxRetries wakes are allowed.
func (s *Store) sleep(policy RetryPolicy, d time.Duration) {
	s.logger.Info("sleeping", "ms", d.Milliseconds())
	if d <= 0 {
		return
	}

	start := s.clock.Now()
	remaining := d
	for wakes := 2 * policy.MaxRetries; remaining > 0; wakes-- {
		if wakes <= 0 {
			s.logger.Warn("sleep break triggered: the monotonic clock may be " +
				"misbehaving or the database is extremely busy")
			break
		}
		s.clock.Sleep(remaining)
		remaining = d - s.clock.Now().Sub(start)
		if remaining > 0 {
			s.logger.Debug("woke early", "remaining_ms", remaining.Milliseconds())
		}
	}

	slept := s.clock.Now().Sub(start)
	s.logger.Info("slept", "ms", slept.Milliseconds())

	if slept < d {
		s.logger.Error("failed to sleep between failures",
			"requested_ms", d.Milliseconds(), "slept_ms", slept.Milliseconds())
	}
	if slept > (d+time.Millisecond)*100 {
		s.logger.Error("major clock problem detected",
			"requested_ms", d.Milliseconds(), "slept_ms", slept.Milliseconds())
	}
}

func defaultIntN(n int) int {
	return rand.Intn(n)
}
