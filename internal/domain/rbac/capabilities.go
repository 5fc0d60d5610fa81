package rbac

// Package rbac derives role capabilities consumed by gating logic.
// The mapping is a fixed table, not configurable at runtime.

import (
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
)

// Capability names a derived boolean permission.
type Capability string

const (
	// ActsAsManagement is held by school management only.
	ActsAsManagement Capability = "acts_as_management"
	// ActsAsStaff is the registrar-tier administrative capability.
	ActsAsStaff Capability = "acts_as_staff"
	// ActsAsTeacher covers grade-entry and class-diary screens.
	ActsAsTeacher Capability = "acts_as_teacher"
	// ActsAsAnyStaff is held by every employee-like role.
	ActsAsAnyStaff Capability = "acts_as_any_staff"
	// ActsAsLearner covers the student/guardian surfaces.
	ActsAsLearner Capability = "acts_as_learner"
)

// All lists every capability, in table order.
var All = []Capability{
	ActsAsManagement,
	ActsAsStaff,
	ActsAsTeacher,
	ActsAsAnyStaff,
	ActsAsLearner,
}

// CapabilitySet is the full set of derived booleans for one role.
// It is a value type with no independent lifecycle; recompute on read.
type CapabilitySet struct {
	ActsAsManagement bool
	ActsAsStaff      bool
	ActsAsTeacher    bool
	ActsAsAnyStaff   bool
	ActsAsLearner    bool
}

// Has reports whether the named capability holds.
// Unknown capability names never hold.
func (s CapabilitySet) Has(c Capability) bool {
	switch c {
	case ActsAsManagement:
		return s.ActsAsManagement
	case ActsAsStaff:
		return s.ActsAsStaff
	case ActsAsTeacher:
		return s.ActsAsTeacher
	case ActsAsAnyStaff:
		return s.ActsAsAnyStaff
	case ActsAsLearner:
		return s.ActsAsLearner
	}
	return false
}

// HasAny reports whether at least one of the given capabilities holds.
// An empty list never holds; callers treat empty requirements separately.
func (s CapabilitySet) HasAny(caps []Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Derive computes the capability set for a role. It is total and
// deterministic: any role outside the closed enumeration, including the
// absent (empty) role, yields the zero set.
func Derive(role domainsession.Role) CapabilitySet {
	switch role {
	case domainsession.RoleManagement:
		return CapabilitySet{
			ActsAsManagement: true,
			ActsAsStaff:      true,
			ActsAsTeacher:    true,
			ActsAsAnyStaff:   true,
		}
	case domainsession.RoleRegistrar:
		return CapabilitySet{
			ActsAsStaff:    true,
			ActsAsAnyStaff: true,
		}
	case domainsession.RoleTeacher:
		return CapabilitySet{
			ActsAsTeacher:  true,
			ActsAsAnyStaff: true,
		}
	case domainsession.RoleMonitor:
		return CapabilitySet{
			ActsAsAnyStaff: true,
		}
	case domainsession.RoleStudent, domainsession.RoleGuardian:
		return CapabilitySet{
			ActsAsLearner: true,
		}
	}
	return CapabilitySet{}
}

// DeriveSnapshot derives capabilities from the current session snapshot.
func DeriveSnapshot(snap domainsession.Snapshot) CapabilitySet {
	role, ok := snap.Role()
	if !ok {
		return CapabilitySet{}
	}
	return Derive(role)
}
