package instances

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsentInstances is returned when a project still has unsent data.
var ErrUnsentInstances = errors.New("project has unsent instances")

// UnsentGuard blocks deleting a project that holds complete or failed-to-send
// instances. It satisfies lifecycle.DeletionGuard.
type UnsentGuard struct {
	instances InstancesRepository
}

// NewUnsentGuard returns a guard over repo.
func NewUnsentGuard(repo InstancesRepository) *UnsentGuard {
	return &UnsentGuard{instances: repo}
}

// CheckDelete returns ErrUnsentInstances when projectID has unsent instances.
func (g *UnsentGuard) CheckDelete(ctx context.Context, projectID string) error {
	list, err := g.instances.ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list instances: %w", err)
	}
	unsent := 0
	for _, inst := range list {
		if inst.IsUnsent() {
			unsent++
		}
	}
	if unsent > 0 {
		return fmt.Errorf("%w: %d", ErrUnsentInstances, unsent)
	}
	return nil
}
