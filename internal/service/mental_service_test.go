package service

import (
	"context"
	"dungeon_backend/internal/model"
	"dungeon_backend/internal/util"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodFor(t *testing.T) {
	assert.Equal(t, model.MoodStable, MoodFor(100))
	assert.Equal(t, model.MoodStable, MoodFor(71))
	assert.Equal(t, model.MoodNormal, MoodFor(70))
	assert.Equal(t, model.MoodNormal, MoodFor(41))
	assert.Equal(t, model.MoodAnxious, MoodFor(40))
	assert.Equal(t, model.MoodAnxious, MoodFor(21))
	assert.Equal(t, model.MoodBreakdown, MoodFor(20))
	assert.Equal(t, model.MoodBreakdown, MoodFor(0))
}

func TestConsecutiveWrongsTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.addStudent(t, "kim")

	initial, err := env.mentalSvc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, initial.Gauge)
	assert.Equal(t, model.MoodNormal, initial.Mood)

	wantDamage := []int{10, 10, 15, 15, 25}
	wantGauge := []int{90, 80, 65, 50, 25}
	for i := range wantDamage {
		res, err := env.mentalSvc.ApplyAnswer(ctx, s.ID, false)
		require.NoError(t, err)
		assert.Equal(t, wantDamage[i], res.Transition.Damage, "wrong #%d", i+1)
		assert.Equal(t, wantGauge[i], res.State.Gauge, "wrong #%d", i+1)
		assert.False(t, res.State.InCrisis)
		assert.False(t, res.Transition.EnteredCrisis)
	}

	// 第六次答错跌破 20
	res, err := env.mentalSvc.ApplyAnswer(ctx, s.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.State.Gauge)
	assert.True(t, res.State.InCrisis)
	assert.True(t, res.Transition.EnteredCrisis)
	assert.Equal(t, 1, res.State.TotalBreakdowns)
	assert.Equal(t, model.MoodBreakdown, res.State.Mood)
	assert.Equal(t, DialogueDestruction, res.Transition.Tier)
	require.NotNil(t, res.State.LastBreakdownAt)

	// 危机中继续答错不重复计数
	res, err = env.mentalSvc.ApplyAnswer(ctx, s.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.State.Gauge)
	assert.False(t, res.Transition.EnteredCrisis)
	assert.Equal(t, 1, res.State.TotalBreakdowns)
}

func TestCorrectAnswerRecovery(t *testing.T) {
	st := NewMentalState("s1")
	st.Gauge = 95
	tr := ApplyAnswerToState(st, true, time.Now())
	assert.Equal(t, 5, tr.Recovery)
	assert.Equal(t, 100, st.Gauge)
	assert.Equal(t, 1, st.ConsecutiveCorrects)

	st = NewMentalState("s2")
	st.Gauge = 15
	st.InCrisis = true
	st.ConsecutiveWrongs = 6
	ApplyAnswerToState(st, true, time.Now())
	assert.Equal(t, 25, st.Gauge)
	assert.False(t, st.InCrisis)
	assert.Zero(t, st.ConsecutiveWrongs)
	assert.Equal(t, model.MoodAnxious, st.Mood)

	st = NewMentalState("s3")
	st.Gauge = 5
	st.InCrisis = true
	ApplyAnswerToState(st, true, time.Now())
	assert.Equal(t, 15, st.Gauge)
	assert.True(t, st.InCrisis)
}

func TestWrongAnswerBreaksCombo(t *testing.T) {
	st := NewMentalState("s1")
	for i := 0; i < 3; i++ {
		ApplyAnswerToState(st, true, time.Now())
	}
	tr := ApplyAnswerToState(st, false, time.Now())
	assert.True(t, tr.BrokeCombo)
	assert.Equal(t, DialogueLight, tr.Tier)
}

func TestMentalGaugeStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	st := NewMentalState("s1")

	for i := 0; i < 5000; i++ {
		if rng.IntN(10) == 0 {
			ApplyRecovery(st, 1+rng.IntN(40))
		} else {
			ApplyAnswerToState(st, rng.IntN(3) == 0, time.Now())
			require.False(t, st.ConsecutiveCorrects > 0 && st.ConsecutiveWrongs > 0, "step %d", i)
			require.True(t, st.ConsecutiveCorrects > 0 || st.ConsecutiveWrongs > 0, "step %d", i)
		}
		require.GreaterOrEqual(t, st.Gauge, 0, "step %d", i)
		require.LessOrEqual(t, st.Gauge, 100, "step %d", i)
		require.Equal(t, MoodFor(st.Gauge), st.Mood, "step %d", i)
	}
}

func TestCompleteRecovery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.addStudent(t, "lee")

	for i := 0; i < 6; i++ {
		_, err := env.mentalSvc.ApplyAnswer(ctx, s.ID, false)
		require.NoError(t, err)
	}

	res, err := env.mentalSvc.CompleteRecovery(ctx, s.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, res.State.Gauge)
	assert.Equal(t, 15, res.Recovered)
	assert.True(t, res.State.InCrisis)
	assert.Zero(t, res.State.ConsecutiveWrongs)
	assert.Equal(t, 1, res.State.TotalRecoveries)

	res, err = env.mentalSvc.CompleteRecovery(ctx, s.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 35, res.State.Gauge)
	assert.False(t, res.State.InCrisis)
	assert.Equal(t, 2, res.State.TotalRecoveries)
}

func TestCompleteRecoveryWithoutCrisis(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.addStudent(t, "park")

	res, err := env.mentalSvc.CompleteRecovery(ctx, s.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 100, res.State.Gauge)
	assert.Zero(t, res.Recovered)
	assert.Equal(t, 1, res.State.TotalRecoveries)

	_, err = env.mentalSvc.CompleteRecovery(ctx, s.ID, 0)
	assert.ErrorIs(t, err, util.ErrInvalidAmount)
}

func TestCompleteRecoveryHugeAmountSaturates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.addStudent(t, "choi")

	_, err := env.mentalSvc.ApplyAnswer(ctx, s.ID, false)
	require.NoError(t, err)

	res, err := env.mentalSvc.CompleteRecovery(ctx, s.ID, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 100, res.State.Gauge)
	assert.Equal(t, 10, res.Recovered)
	assert.False(t, res.State.InCrisis)
	assert.Equal(t, model.MoodStable, res.State.Mood)
}

func TestAddClampedExtremes(t *testing.T) {
	cases := []struct {
		v, delta, want int
	}{
		{90, math.MaxInt, 100},
		{10, math.MinInt, 0},
		{0, math.MaxInt, 100},
		{100, math.MinInt, 0},
		{50, 20, 70},
		{50, -70, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, addClamped(tc.v, tc.delta, 0, 100), "%d%+d", tc.v, tc.delta)
	}
}

func TestMentalUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.mentalSvc.ApplyAnswer(ctx, "missing", false)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
	_, err = env.mentalSvc.CompleteRecovery(ctx, "missing", 10)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}
