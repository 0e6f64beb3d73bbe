package storage

import (
	"context"

	"github.com/mcoot/turntimer/internal/model"
)

// Storage holds the observable snapshot of every live session
// Snapshots are written by the session loop after each committed change
type Storage interface {
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error)
	DeleteSession(ctx context.Context, code model.SessionCode) error
	SessionExists(ctx context.Context, code model.SessionCode) (bool, error)
}
