package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/turntimer/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newSession(code model.SessionCode) *model.Session {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Session{
		Code: code,
		Players: []model.Player{
			{ID: 0, Name: "Alice", Color: "blue"},
			{ID: 1, Name: "Bob", Color: "green"},
		},
		Timer:      model.InitialTimerState(),
		GraceDelay: model.DefaultGraceDelay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	session := newSession("ABC234")

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(session, retrieved)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "NOPE99")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSaveOverwrites() {
	session := newSession("ABC234")
	_ = s.storage.SaveSession(s.ctx, session)

	session.Timer.Remaining = 42
	session.Timer.RunState = model.RunStatePaused
	_ = s.storage.SaveSession(s.ctx, session)

	retrieved, err := s.storage.GetSession(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(42, retrieved.Timer.Remaining)
	s.Equal(model.RunStatePaused, retrieved.Timer.RunState)
}

func (s *StorageSuite) TestStoredSnapshotIsIsolated() {
	session := newSession("ABC234")
	_ = s.storage.SaveSession(s.ctx, session)

	session.Players[0].Points = 10
	retrieved, _ := s.storage.GetSession(s.ctx, "ABC234")
	retrieved.Players[1].Name = "Mallory"

	again, _ := s.storage.GetSession(s.ctx, "ABC234")
	s.Equal(0, again.Players[0].Points)
	s.Equal("Bob", again.Players[1].Name)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, newSession("ABC234"))

	err := s.storage.DeleteSession(s.ctx, "ABC234")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionExists() {
	exists, err := s.storage.SessionExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	_ = s.storage.SaveSession(s.ctx, newSession("ABC234"))

	exists, err = s.storage.SessionExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}
