package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiter_AllowsUnderThreshold(t *testing.T) {
	limiter := newLoginLimiter(3, time.Minute)

	assert.True(t, limiter.Allow("a@test.com"))
	limiter.RecordFailure("a@test.com")
	limiter.RecordFailure("a@test.com")
	assert.True(t, limiter.Allow("a@test.com"))
}

func TestLoginLimiter_LocksOutAtThreshold(t *testing.T) {
	limiter := newLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		limiter.RecordFailure("a@test.com")
	}
	assert.False(t, limiter.Allow("a@test.com"))
	// Other accounts are unaffected.
	assert.True(t, limiter.Allow("b@test.com"))
}

func TestLoginLimiter_ResetClearsFailures(t *testing.T) {
	limiter := newLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		limiter.RecordFailure("a@test.com")
	}
	limiter.Reset("a@test.com")
	assert.True(t, limiter.Allow("a@test.com"))
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	limiter := newLoginLimiter(3, 10*time.Millisecond)

	for i := 0; i < 3; i++ {
		limiter.RecordFailure("a@test.com")
	}
	assert.False(t, limiter.Allow("a@test.com"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, limiter.Allow("a@test.com"))
}
