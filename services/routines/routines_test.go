package routines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oodog/binghome/config"
)

func mustRoutine(t *testing.T, conf config.RoutineConf) *Routine {
	routine, err := NewRoutine(conf)
	assert.NoError(t, err)
	return routine
}

func TestShouldRunEveryDay(t *testing.T) {
	routine := mustRoutine(t, config.RoutineConf{Name: "lights out", Time: "22:30"})

	// 2026-03-02 is a Monday
	at := time.Date(2026, 3, 2, 22, 30, 10, 0, time.UTC)
	assert.True(t, routine.ShouldRun(at))
	assert.False(t, routine.ShouldRun(at.Add(-time.Minute)))
	assert.False(t, routine.ShouldRun(at.Add(time.Minute)))
}

func TestShouldRunDays(t *testing.T) {
	routine := mustRoutine(t, config.RoutineConf{Name: "weekday wakeup", Time: "07:00", Days: []string{"mon", "tue", "wed", "thu", "fri"}})

	monday := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 7, 0, 0, 0, time.UTC)
	assert.True(t, routine.ShouldRun(monday))
	assert.False(t, routine.ShouldRun(saturday))
}

func TestShouldRunOncePerMinute(t *testing.T) {
	routine := mustRoutine(t, config.RoutineConf{Name: "lights out", Time: "22:30"})

	at := time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC)
	assert.True(t, routine.ShouldRun(at))
	routine.markRun(at)
	// 30s later, same minute: must not fire again
	assert.False(t, routine.ShouldRun(at.Add(30*time.Second)))
	// next day it fires again
	assert.True(t, routine.ShouldRun(at.Add(24*time.Hour)))
}

func TestBadRoutineConf(t *testing.T) {
	_, err := NewRoutine(config.RoutineConf{Name: "bad", Time: "25:00"})
	assert.Error(t, err)
	_, err = NewRoutine(config.RoutineConf{Name: "bad", Time: "07:00", Days: []string{"funday"}})
	assert.Error(t, err)
}

func TestTimers(t *testing.T) {
	timers := NewTimers()
	timer := timers.Add(time.Minute, "tea")
	assert.Equal(t, 1, timer.Id)
	assert.Len(t, timers.Active(), 1)

	// not due yet
	assert.Empty(t, timers.Expired(time.Now()))

	// due
	expired := timers.Expired(time.Now().Add(2 * time.Minute))
	if assert.Len(t, expired, 1) {
		assert.Equal(t, "tea", expired[0].Message)
	}
	assert.Empty(t, timers.Active())
}

func TestTimerCancel(t *testing.T) {
	timers := NewTimers()
	timer := timers.Add(time.Hour, "laundry")
	assert.True(t, timers.Cancel(timer.Id))
	assert.False(t, timers.Cancel(timer.Id))
	assert.Empty(t, timers.Active())
}
