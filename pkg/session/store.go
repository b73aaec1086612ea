// Package session persists workflow snapshots between HTTP requests. Stores
// hold values: a loaded snapshot is rebuilt into a live session with
// workflow.Engine.Restore and saved back after every mutation.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-leadform/pkg/workflow"
)

// Errors returned by every Store implementation.
var (
	ErrNotFound  = errors.New("session: not found")
	ErrInvalidID = errors.New("session: invalid id")
)

// Store loads and saves session snapshots by id.
type Store interface {
	Load(ctx context.Context, id string) (workflow.Snapshot, error)
	Save(ctx context.Context, snap workflow.Snapshot) error
	Delete(ctx context.Context, id string) error
}

func validID(id string) bool {
	return strings.TrimSpace(id) != ""
}
