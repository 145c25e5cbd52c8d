package circuitbreaker

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestBreaker(timeout time.Duration) *Breaker {
	return New(Config{
		FailThreshold:    3,
		SuccessThreshold: 2,
		Timeout:          timeout,
	}, zerolog.Nop())
}

func TestBreaker_StartsClosed(t *testing.T) {
	b := newTestBreaker(time.Minute)

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_OpensAfterFailThreshold(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Record(false)
	b.Record(false)
	assert.Equal(t, StateClosed, b.State())

	b.Record(false)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := newTestBreaker(time.Minute)

	b.Record(false)
	b.Record(false)
	b.Record(true)
	b.Record(false)
	b.Record(false)

	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	assert.False(t, b.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())

	b.Record(true)
	assert.Equal(t, StateHalfOpen, b.State())
	b.Record(true)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	time.Sleep(20 * time.Millisecond)
	assert.True(t, b.Allow())

	b.Record(false)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_Reset(t *testing.T) {
	b := newTestBreaker(time.Minute)

	for i := 0; i < 3; i++ {
		b.Record(false)
	}
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
}
