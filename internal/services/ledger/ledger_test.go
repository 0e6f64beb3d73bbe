package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/turntimer/internal/model"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = New([]model.PlayerID{0, 1, 2})
}

func (s *LedgerSuite) TestNewStartsAtZero() {
	for _, id := range []model.PlayerID{0, 1, 2} {
		points, err := s.ledger.Points(id)
		s.Require().NoError(err)
		s.Equal(0, points)
	}
}

func (s *LedgerSuite) TestAddPositive() {
	points, err := s.ledger.Add(1, 3)

	s.Require().NoError(err)
	s.Equal(3, points)
}

func (s *LedgerSuite) TestAddAccumulates() {
	_, _ = s.ledger.Add(0, 5)
	points, err := s.ledger.Add(0, -2)

	s.Require().NoError(err)
	s.Equal(3, points)
}

func (s *LedgerSuite) TestAddClampsAtZero() {
	_, _ = s.ledger.Add(0, 3)

	points, err := s.ledger.Add(0, -5)

	s.Require().NoError(err)
	s.Equal(0, points)

	stored, _ := s.ledger.Points(0)
	s.Equal(0, stored)
}

func (s *LedgerSuite) TestDecrementAtZeroStaysZero() {
	points, err := s.ledger.Add(2, -1)

	s.Require().NoError(err)
	s.Equal(0, points)
}

func (s *LedgerSuite) TestAddSaturatesAtMaxInt() {
	tests := []struct {
		name   string
		start  int
		delta  int
		expect int
	}{
		{"max delta onto positive total", 5, math.MaxInt, math.MaxInt},
		{"max delta onto zero", 0, math.MaxInt, math.MaxInt},
		{"one past max", math.MaxInt - 1, 2, math.MaxInt},
		{"exactly max", math.MaxInt - 1, 1, math.MaxInt},
		{"min delta from max", math.MaxInt, math.MinInt, 0},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			l := New([]model.PlayerID{0})
			if tt.start > 0 {
				_, err := l.Add(0, tt.start)
				s.Require().NoError(err)
			}

			points, err := l.Add(0, tt.delta)

			s.Require().NoError(err)
			s.Equal(tt.expect, points)
			stored, _ := l.Points(0)
			s.Equal(tt.expect, stored)
		})
	}
}

func (s *LedgerSuite) TestAddUnknownPlayer() {
	_, err := s.ledger.Add(9, 1)

	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *LedgerSuite) TestPointsUnknownPlayer() {
	_, err := s.ledger.Points(-1)

	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *LedgerSuite) TestAddIsolatedPerPlayer() {
	_, _ = s.ledger.Add(1, 4)

	other, _ := s.ledger.Points(0)
	s.Equal(0, other)
}

func (s *LedgerSuite) TestStandingsOrdering() {
	_, _ = s.ledger.Add(2, 5)
	_, _ = s.ledger.Add(0, 2)
	_, _ = s.ledger.Add(1, 5)

	s.Equal([]Standing{
		{PlayerID: 1, Points: 5},
		{PlayerID: 2, Points: 5},
		{PlayerID: 0, Points: 2},
	}, s.ledger.Standings())
}

func (s *LedgerSuite) TestNewIgnoresDuplicateIDs() {
	l := New([]model.PlayerID{0, 0, 1})

	s.Len(l.Standings(), 2)
}
