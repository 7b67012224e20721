package kernel

import (
	"errors"
	"slices"

	"flowerstand/internal/pkg/guard"
)

// RoleOperator may cancel any project on behalf of its planner.
const RoleOperator = "operator"

var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")

// Actor is the authenticated principal behind a command. It is always built
// from verified credentials, never from request payloads.
type Actor struct {
	id    UUID
	roles []string
	guard guard.ConstructorGuard
}

// NewActor builds an actor from an authenticated subject and its roles.
func NewActor(id UUID, roles ...string) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{
		id:    id,
		roles: slices.Clone(roles),
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) ID() UUID {
	return a.id
}

func (a Actor) Roles() []string {
	return slices.Clone(a.roles)
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.roles, role)
}

// IsOperator reports whether the actor may act on projects it does not own.
func (a Actor) IsOperator() bool {
	return a.HasRole(RoleOperator)
}
