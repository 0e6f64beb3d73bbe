package timer

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/turntimer/internal/model"
)

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	engine, err := NewEngine(2)
	s.Require().NoError(err)
	s.engine = engine
}

// tickN delivers n ticks and returns every alert emitted along the way
func (s *EngineSuite) tickN(n int) []model.AlertEvent {
	var alerts []model.AlertEvent
	for i := 0; i < n; i++ {
		alerts = append(alerts, s.engine.Tick().Alerts...)
	}
	return alerts
}

// expire runs the current turn down to zero and returns the armed token
func (s *EngineSuite) expire() uint64 {
	s.engine.Start()
	s.tickN(model.TurnDuration - 1)
	outcome := s.engine.Tick()
	s.Require().NotZero(outcome.Armed)
	return outcome.Armed
}

// Construction tests

func (s *EngineSuite) TestNewEngineInitialState() {
	s.Equal(model.TimerState{ActivePlayerIndex: 0, Remaining: 60, RunState: model.RunStateIdle}, s.engine.State())
	s.Zero(s.engine.PendingAdvance())
}

func (s *EngineSuite) TestNewEngineAcceptsTwoToFour() {
	for count := 2; count <= 4; count++ {
		engine, err := NewEngine(count)
		s.Require().NoError(err)
		s.Equal(count, engine.PlayerCount())
	}
}

func (s *EngineSuite) TestNewEngineRejectsOutOfRangeCounts() {
	for _, count := range []int{0, 1, 5, 10} {
		_, err := NewEngine(count)
		s.ErrorIs(err, model.ErrInvalidPlayerCount, "count=%d", count)
	}
}

// Start and pause tests

func (s *EngineSuite) TestStartFromIdle() {
	outcome := s.engine.Start()

	s.True(outcome.Applied)
	s.Equal(model.RunStateRunning, s.engine.State().RunState)
	s.Equal(model.RunStateIdle, outcome.Before.RunState)
}

func (s *EngineSuite) TestStartWhileRunningIsNoop() {
	s.engine.Start()

	outcome := s.engine.Start()

	s.False(outcome.Applied)
	s.False(outcome.Changed())
}

func (s *EngineSuite) TestPauseFromRunning() {
	s.engine.Start()

	outcome := s.engine.Pause()

	s.True(outcome.Applied)
	s.Equal(model.RunStatePaused, s.engine.State().RunState)
}

func (s *EngineSuite) TestPauseWhileIdleIsNoop() {
	outcome := s.engine.Pause()

	s.False(outcome.Applied)
	s.Equal(model.RunStateIdle, s.engine.State().RunState)
}

func (s *EngineSuite) TestPauseWhilePausedIsNoop() {
	s.engine.Start()
	s.engine.Pause()

	s.False(s.engine.Pause().Applied)
}

func (s *EngineSuite) TestPauseResumePreservesRemaining() {
	s.engine.Start()
	s.tickN(23)
	s.Require().Equal(37, s.engine.State().Remaining)

	s.engine.Pause()
	s.tickN(5)
	s.Equal(37, s.engine.State().Remaining)

	s.True(s.engine.Start().Applied)
	s.Equal(37, s.engine.State().Remaining)
	s.Equal(model.RunStateRunning, s.engine.State().RunState)

	s.engine.Tick()
	s.Equal(36, s.engine.State().Remaining)
}

func (s *EngineSuite) TestStartWithZeroRemainingIsNoop() {
	s.expire()

	outcome := s.engine.Start()

	s.False(outcome.Applied)
	s.Equal(0, s.engine.State().Remaining)
	s.Equal(model.RunStateIdle, s.engine.State().RunState)
}

// Tick tests

func (s *EngineSuite) TestTickWhileIdleIsIgnored() {
	outcome := s.engine.Tick()

	s.False(outcome.Applied)
	s.Equal(60, s.engine.State().Remaining)
}

func (s *EngineSuite) TestTickDecrementsByOne() {
	s.engine.Start()

	outcome := s.engine.Tick()

	s.True(outcome.Applied)
	s.Equal(59, s.engine.State().Remaining)
	s.Empty(outcome.Alerts)
}

func (s *EngineSuite) TestSixtyTicksReachZero() {
	s.engine.Start()

	alerts := s.tickN(60)

	state := s.engine.State()
	s.Equal(0, state.Remaining)
	s.Equal(model.RunStateIdle, state.RunState)

	// Ten warning ticks (10..1) then exactly one expiry
	s.Len(alerts, 11)
	for _, a := range alerts[:10] {
		s.Equal(model.AlertTick, a.Kind)
	}
	s.Equal(model.AlertExpired, alerts[10].Kind)
}

func (s *EngineSuite) TestTicksAfterExpiryAreIgnored() {
	s.expire()

	alerts := s.tickN(5)

	s.Empty(alerts)
	s.Equal(0, s.engine.State().Remaining)
}

func (s *EngineSuite) TestExpiryArmsAutoAdvance() {
	token := s.expire()

	s.Equal(token, s.engine.PendingAdvance())
}

func (s *EngineSuite) TestZeroRemainingNeverRunning() {
	s.engine.Start()
	for i := 0; i < model.TurnDuration; i++ {
		s.engine.Tick()
		state := s.engine.State()
		if state.Remaining == 0 {
			s.NotEqual(model.RunStateRunning, state.RunState)
		}
	}
}

// Skip tests

func (s *EngineSuite) TestSkipFromEachState() {
	prepare := map[model.RunState]func(){
		model.RunStateIdle:    func() {},
		model.RunStateRunning: func() { s.engine.Start(); s.tickN(4) },
		model.RunStatePaused:  func() { s.engine.Start(); s.tickN(4); s.engine.Pause() },
	}

	for state, setup := range prepare {
		s.Run(string(state), func() {
			s.SetupTest()
			setup()

			outcome := s.engine.Skip()

			s.True(outcome.Applied)
			s.Equal(model.TimerState{ActivePlayerIndex: 1, Remaining: 60, RunState: model.RunStateIdle}, s.engine.State())
		})
	}
}

func (s *EngineSuite) TestSkipCycleCloses() {
	for count := model.MinPlayers; count <= model.MaxPlayers; count++ {
		engine, err := NewEngine(count)
		s.Require().NoError(err)

		for i := 0; i < count; i++ {
			engine.Skip()
		}

		s.Equal(0, engine.State().ActivePlayerIndex, "count=%d", count)
	}
}

// Reset tests

func (s *EngineSuite) TestResetKeepsActivePlayer() {
	s.engine.Skip()
	s.engine.Start()
	s.tickN(15)

	outcome := s.engine.Reset()

	s.True(outcome.Applied)
	s.Equal(model.TimerState{ActivePlayerIndex: 1, Remaining: 60, RunState: model.RunStateIdle}, s.engine.State())
}

func (s *EngineSuite) TestResetAfterExpiryAllowsStart() {
	s.expire()

	s.engine.Reset()

	s.True(s.engine.Start().Applied)
	s.Equal(0, s.engine.State().ActivePlayerIndex)
}

// Auto-advance tests

func (s *EngineSuite) TestAutoAdvanceStartsNextTurn() {
	token := s.expire()

	outcome := s.engine.AutoAdvance(token)

	s.True(outcome.Applied)
	s.Equal(model.TimerState{ActivePlayerIndex: 1, Remaining: 60, RunState: model.RunStateRunning}, s.engine.State())
	s.Zero(s.engine.PendingAdvance())
}

func (s *EngineSuite) TestAutoAdvanceFiresOnce() {
	token := s.expire()
	s.engine.AutoAdvance(token)

	outcome := s.engine.AutoAdvance(token)

	s.False(outcome.Applied)
	s.Equal(1, s.engine.State().ActivePlayerIndex)
}

func (s *EngineSuite) TestSkipBeforeAutoAdvanceWinsRace() {
	token := s.expire()

	skip := s.engine.Skip()
	s.True(skip.Disarmed)

	late := s.engine.AutoAdvance(token)

	s.False(late.Applied)
	s.False(late.Changed())
	s.Equal(model.TimerState{ActivePlayerIndex: 1, Remaining: 60, RunState: model.RunStateIdle}, s.engine.State())
}

func (s *EngineSuite) TestResetBeforeAutoAdvanceWinsRace() {
	token := s.expire()

	reset := s.engine.Reset()
	s.True(reset.Disarmed)

	s.False(s.engine.AutoAdvance(token).Applied)
	s.Equal(model.TimerState{ActivePlayerIndex: 0, Remaining: 60, RunState: model.RunStateIdle}, s.engine.State())
}

func (s *EngineSuite) TestStaleTokenFromEarlierTurnIsDiscarded() {
	first := s.expire()
	s.engine.Skip()
	second := s.expire()
	s.NotEqual(first, second)

	s.False(s.engine.AutoAdvance(first).Applied)
	s.True(s.engine.AutoAdvance(second).Applied)
	s.Equal(0, s.engine.State().ActivePlayerIndex)
}

func (s *EngineSuite) TestAutoAdvanceWithoutExpiryIsNoop() {
	s.False(s.engine.AutoAdvance(0).Applied)
	s.False(s.engine.AutoAdvance(42).Applied)
}

func (s *EngineSuite) TestEndToEndTwoPlayers() {
	s.engine.Start()

	var expiries int
	var token uint64
	for i := 0; i < 60; i++ {
		outcome := s.engine.Tick()
		for _, a := range outcome.Alerts {
			if a.Kind == model.AlertExpired {
				expiries++
			}
		}
		if outcome.Armed != 0 {
			token = outcome.Armed
		}
	}
	s.Equal(1, expiries)

	s.engine.AutoAdvance(token)

	s.Equal(model.TimerState{ActivePlayerIndex: 1, Remaining: 60, RunState: model.RunStateRunning}, s.engine.State())
}
