package session

// Package session contains domain-level types for the client session.
// It is pure and free of adapter concerns.

// Role is the single discrete role the backend assigns to a user profile.
// Keep string form for easy persistence and JSON payloads.
// Valid values are defined as constants below.
type Role string

const (
	RoleManagement Role = "management"
	RoleRegistrar  Role = "registrar"
	RoleTeacher    Role = "teacher"
	RoleMonitor    Role = "monitor"
	RoleStudent    Role = "student"
	RoleGuardian   Role = "guardian"
)

// AllRoles lists every valid role, in backend declaration order.
var AllRoles = []Role{
	RoleManagement,
	RoleRegistrar,
	RoleTeacher,
	RoleMonitor,
	RoleStudent,
	RoleGuardian,
}

// Valid reports whether r is one of the closed set of roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManagement, RoleRegistrar, RoleTeacher, RoleMonitor, RoleStudent, RoleGuardian:
		return true
	}
	return false
}

// Status models the session lifecycle.
// Transitions are monotonic per cycle: Unknown -> Loading -> {Authenticated | Anonymous}.
// A fresh Loading phase is entered only by an explicit Initialize or Login.
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// UserProfile is the backend user record the client holds while authenticated.
// It is replaced wholesale on each successful profile fetch and may be
// partially patched via UserPatch without a refetch.
type UserProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	DarkMode   bool   `json:"dark_mode"`
	SchoolName string `json:"school_name"`
	AvatarURL  string `json:"avatar_url"`
}

// UserPatch carries locally-known-correct field updates for a shallow merge
// into the current profile. Nil fields are left untouched.
type UserPatch struct {
	Name       *string
	Username   *string
	DarkMode   *bool
	SchoolName *string
	AvatarURL  *string
}

// IsZero reports whether the patch changes nothing.
func (p UserPatch) IsZero() bool {
	return p.Name == nil && p.Username == nil && p.DarkMode == nil && p.SchoolName == nil && p.AvatarURL == nil
}

// Apply merges the patch into a copy of the given profile.
func (p UserPatch) Apply(u UserProfile) UserProfile {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.DarkMode != nil {
		u.DarkMode = *p.DarkMode
	}
	if p.SchoolName != nil {
		u.SchoolName = *p.SchoolName
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	return u
}

// Snapshot is the immutable view of the session handed to subscribers.
// User is non-nil if and only if Status is StatusAuthenticated.
type Snapshot struct {
	Status Status
	User   *UserProfile
}

// Role returns the current role and whether one is present.
func (s Snapshot) Role() (Role, bool) {
	if s.User == nil {
		return "", false
	}
	return s.User.Role, true
}

// Authenticated reports whether the snapshot holds a signed-in user.
func (s Snapshot) Authenticated() bool { return s.Status == StatusAuthenticated }
