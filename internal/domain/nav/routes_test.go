package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolaweb/portal-core/internal/domain/rbac"
)

func TestMatchExactRoutes(t *testing.T) {
	rd, params, ok := Match(PathDashboard)
	require.True(t, ok)
	assert.Equal(t, "dashboard", rd.View)
	assert.Empty(t, params)
	assert.False(t, rd.Public)
	assert.Empty(t, rd.Required, "dashboard admits any authenticated role")

	rd, _, ok = Match(PathLogin)
	require.True(t, ok)
	assert.True(t, rd.Public)
}

func TestMatchRootRedirect(t *testing.T) {
	rd, _, ok := Match(PathRoot)
	require.True(t, ok)
	assert.Equal(t, PathDashboard, rd.RedirectTo)
}

func TestMatchResetPasswordToken(t *testing.T) {
	rd, params, ok := Match("/reset-password/abc123")
	require.True(t, ok)
	assert.True(t, rd.Public)
	assert.Equal(t, "abc123", params["token"])
}

func TestMatchClassDiary(t *testing.T) {
	rd, params, ok := Match("/classes/2026/101/B")
	require.True(t, ok)
	assert.Equal(t, "class-diary", rd.View)
	assert.Equal(t, map[string]string{"year": "2026", "class": "101", "section": "B"}, params)
}

func TestMatchClassDiaryRejectsMalformedSegments(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"two digit year", "/classes/26/101/B"},
		{"five digit year", "/classes/20266/101/B"},
		{"non numeric class", "/classes/2026/abc/B"},
		{"multi letter section", "/classes/2026/101/BB"},
		{"numeric section", "/classes/2026/101/7"},
		{"missing section", "/classes/2026/101"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rd, _, ok := Match(tc.path)
			assert.False(t, ok)
			assert.Equal(t, ViewNotFound, rd.View)
		})
	}
}

func TestMatchUnknownPathFallsThrough(t *testing.T) {
	rd, params, ok := Match("/no/such/page")
	assert.False(t, ok)
	assert.Equal(t, ViewNotFound, rd.View)
	assert.True(t, rd.Public, "the not-found view renders for everyone")
	assert.Nil(t, params)
}

func TestRouteRequirements(t *testing.T) {
	tests := []struct {
		path string
		want []rbac.Capability
	}{
		{PathStudents, []rbac.Capability{rbac.ActsAsStaff}},
		{PathStaff, []rbac.Capability{rbac.ActsAsManagement}},
		{PathGrades, []rbac.Capability{rbac.ActsAsTeacher}},
		{PathAttendance, []rbac.Capability{rbac.ActsAsAnyStaff}},
		{PathSettings, []rbac.Capability{rbac.ActsAsManagement}},
		{PathMyGrades, []rbac.Capability{rbac.ActsAsLearner}},
	}

	for _, tc := range tests {
		rd, _, ok := Match(tc.path)
		require.True(t, ok, "path %s", tc.path)
		assert.Equal(t, tc.want, rd.Required, "path %s", tc.path)
	}
}

func TestRoutesReturnsCopy(t *testing.T) {
	routes := Routes()
	require.NotEmpty(t, routes)
	routes[0].RedirectTo = "/mutated"

	rd, _, _ := Match(PathRoot)
	assert.Equal(t, PathDashboard, rd.RedirectTo)
}
