package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleAndReschedule(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Stop()) }()

	require.NoError(t, s.SchedulePeriodicRun(time.Hour, func() {}))
	require.NotNil(t, s.job)

	require.NoError(t, s.Reschedule(2*time.Hour))
	require.NotNil(t, s.job)

	// Zero interval disables the periodic trigger.
	require.NoError(t, s.Reschedule(0))
	require.Nil(t, s.job)
}

// Reschedule is only valid after SchedulePeriodicRun registered the task;
// the daemon registers it at startup even when the schedule is disabled.
func TestScheduler_RescheduleWithoutTaskFails(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Stop()) }()

	require.Error(t, s.Reschedule(time.Hour))
}

func TestScheduler_ZeroIntervalIsNoop(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Stop()) }()

	require.NoError(t, s.SchedulePeriodicRun(0, func() {}))
	require.Nil(t, s.job)
}

func TestScheduler_DisabledTriggerCanBeEnabledLater(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Stop()) }()

	// Registering with a zero interval keeps the task so a later
	// Reschedule can activate the trigger.
	require.NoError(t, s.SchedulePeriodicRun(0, func() {}))
	require.Nil(t, s.job)

	require.NoError(t, s.Reschedule(time.Hour))
	require.NotNil(t, s.job)
}
