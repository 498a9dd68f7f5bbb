// Package auth decides which identities may perform which operations.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Role is a capability required by an operation.
type Role int

const (
	// RoleVoter is held by any authenticated identity.
	RoleVoter Role = iota
	// RoleCommission is held by the election commission, which manages the
	// election lifecycle and registers candidates.
	RoleCommission
)

func (r Role) String() string {
	switch r {
	case RoleVoter:
		return "voter"
	case RoleCommission:
		return "commission"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

var (
	// ErrUnauthenticated is returned when there is no caller identity.
	ErrUnauthenticated = errors.New("unauthenticated caller")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("unauthorized caller")
)

// Authorizer checks that origin holds role.
type Authorizer interface {
	Authorize(origin common.Address, role Role) error
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func(origin common.Address, role Role) error

func (f AuthorizerFunc) Authorize(origin common.Address, role Role) error {
	return f(origin, role)
}

// CommissionList grants RoleCommission to a fixed set of addresses and
// RoleVoter to every non zero address.
type CommissionList struct {
	mu      sync.RWMutex
	members map[common.Address]struct{}
}

// NewCommissionList returns a list with the given members.
func NewCommissionList(members ...common.Address) *CommissionList {
	cl := &CommissionList{members: make(map[common.Address]struct{}, len(members))}
	for _, m := range members {
		cl.members[m] = struct{}{}
	}
	return cl
}

// Add grants the commission role to addr.
func (cl *CommissionList) Add(addr common.Address) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.members[addr] = struct{}{}
}

// Members returns the addresses holding the commission role.
func (cl *CommissionList) Members() []common.Address {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	members := make([]common.Address, 0, len(cl.members))
	for m := range cl.members {
		members = append(members, m)
	}
	return members
}

func (cl *CommissionList) Authorize(origin common.Address, role Role) error {
	if origin == (common.Address{}) {
		return ErrUnauthenticated
	}
	switch role {
	case RoleVoter:
		return nil
	case RoleCommission:
		cl.mu.RLock()
		_, ok := cl.members[origin]
		cl.mu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: %s lacks the %s role", ErrUnauthorized, origin.Hex(), role)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %s", ErrUnauthorized, role)
	}
}
