package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/turntimer/internal/config"
	"github.com/mcoot/turntimer/internal/events/redisbus"
	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	_ = s.app.SessionController.Close(s.ctx)
	_ = s.app.Close()
}

func (s *IntegrationSuite) timer(code model.SessionCode) model.TimerState {
	snapshot, err := s.app.SessionController.Snapshot(s.ctx, code)
	if err != nil {
		return model.TimerState{Remaining: -1}
	}
	return snapshot.Timer
}

func (s *IntegrationSuite) advance(code model.SessionCode, d time.Duration, done func(model.TimerState) bool) {
	s.Require().NoError(s.app.MockClock.WaitForWaiters(s.ctx, 1))
	s.app.MockClock.Advance(d)
	s.Require().Eventually(func() bool {
		return done(s.timer(code))
	}, time.Second, time.Millisecond)
}

// Test: Two players, a full turn runs out and the next player starts automatically
func (s *IntegrationSuite) TestFullTurnAutoAdvances() {
	s.app.MockRandom.QueueString("TURN23")

	created, err := s.app.SessionController.CreateSession(s.ctx, []string{"Alice", "Bob"})
	s.Require().NoError(err)
	code := created.Code

	state, err := s.app.SessionController.Start(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.RunStateRunning, state.RunState)

	for want := model.TurnDuration - 1; want >= 0; want-- {
		s.advance(code, time.Second, func(t model.TimerState) bool { return t.Remaining == want })
	}

	expired := s.timer(code)
	s.Equal(0, expired.ActivePlayerIndex)
	s.Equal(model.RunStateIdle, expired.RunState)

	s.advance(code, model.DefaultGraceDelay, func(t model.TimerState) bool { return t.ActivePlayerIndex == 1 })

	next := s.timer(code)
	s.Equal(model.RunStateRunning, next.RunState)
	s.Equal(model.TurnDuration, next.Remaining)

	alerts := s.app.Events.Alerts()
	s.Require().Len(alerts, model.TickWarningThreshold+1)
	s.Equal(model.AlertExpired, alerts[len(alerts)-1])

	stored, err := s.app.Storage.GetSession(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(next, stored.Timer)
}

// Test: Points survive turn changes and are discarded with the session
func (s *IntegrationSuite) TestScoringAcrossTurns() {
	s.app.MockRandom.QueueString("SCORE2")

	created, err := s.app.SessionController.CreateSession(s.ctx, []string{"Alice", "Bob", "Cara"})
	s.Require().NoError(err)
	code := created.Code

	_, err = s.app.SessionController.AddPoints(s.ctx, code, 2, 7)
	s.Require().NoError(err)
	_, err = s.app.SessionController.Skip(s.ctx, code)
	s.Require().NoError(err)
	_, err = s.app.SessionController.AddPoints(s.ctx, code, 0, 3)
	s.Require().NoError(err)

	standings, err := s.app.SessionController.Standings(s.ctx, code)
	s.Require().NoError(err)
	s.Require().Len(standings, 3)
	s.Equal(model.PlayerID(2), standings[0].PlayerID)
	s.Equal(7, standings[0].Points)
	s.Equal(model.PlayerID(0), standings[1].PlayerID)

	s.Require().NoError(s.app.SessionController.EndSession(s.ctx, code))

	_, err = s.app.SessionController.Standings(s.ctx, code)
	s.ErrorIs(err, model.ErrSessionClosed)
	s.Len(s.app.Events.OfType(model.EventSessionEnded), 1)
}

// Test: Events reach an external Redis bus alongside the in-process stream
func (s *IntegrationSuite) TestRedisBusReceivesEvents() {
	mr := miniredis.RunT(s.T())
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	app := NewTestApp(redisbus.New(client))
	defer func() { _ = app.Close() }()

	app.MockRandom.QueueString("BUS234")
	sub := client.Subscribe(s.ctx, redisbus.Channel("BUS234"))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(s.ctx)
	s.Require().NoError(err)

	_, err = app.SessionController.CreateSession(s.ctx, []string{"Alice", "Bob"})
	s.Require().NoError(err)

	select {
	case msg := <-sub.Channel():
		var event model.Event
		s.Require().NoError(json.Unmarshal([]byte(msg.Payload), &event))
		s.Equal(model.EventSessionStarted, event.Type)
		s.Equal(model.SessionCode("BUS234"), event.SessionCode)
	case <-time.After(time.Second):
		s.Fail("no event published to redis")
	}

	s.Require().NoError(app.SessionController.Close(s.ctx))
}

func TestNewDefaultsToMemoryStorage(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.SessionController == nil || app.HubManager == nil {
		t.Fatal("expected wired controller and hub manager")
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	if _, err := New(Config{StorageType: "disk"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Fatal("expected error when redis config is missing")
	}
}

func TestNewWithRedisStorageAndBus(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Storage.Type = config.StorageTypeRedis
	cfg.Storage.RedisURL = "redis://" + mr.Addr()
	cfg.Events.Bus = []string{config.EventBusRedis}

	app, err := New(ConfigFrom(cfg, testutil.NopLogger()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = app.Close() }()

	ctx := context.Background()
	created, err := app.SessionController.CreateSession(ctx, []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !mr.Exists("turntimer:session:" + string(created.Code)) {
		t.Error("expected session snapshot in redis")
	}
	if err := app.SessionController.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestConfigFromMapsEventSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.RedisURL = "redis://localhost:6379"
	cfg.Events.Bus = []string{config.EventBusRedis, config.EventBusNATS}
	cfg.Events.NATSURL = "nats://localhost:4222"
	cfg.Timer.GraceDelay = 2 * time.Second

	fc := ConfigFrom(cfg, nil)

	if !fc.RedisBus || fc.RedisConfig == nil || fc.RedisConfig.URL != cfg.Storage.RedisURL {
		t.Errorf("redis bus not mapped: %+v", fc)
	}
	if fc.NATSConfig == nil || fc.NATSConfig.URL != cfg.Events.NATSURL {
		t.Errorf("nats bus not mapped: %+v", fc)
	}
	if fc.GraceDelay != 2*time.Second {
		t.Errorf("grace delay = %v", fc.GraceDelay)
	}
}
