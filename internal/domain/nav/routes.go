package nav

import (
	"regexp"
	"strings"

	"github.com/escolaweb/portal-core/internal/domain/rbac"
)

// Route paths. The class-diary route carries three positional segments:
// year, numeric class identifier, and a single section letter.
const (
	PathRoot          = "/"
	PathLogin         = "/login"
	PathForgotPass    = "/forgot-password"
	PathResetPass     = "/reset-password/:token"
	PathDashboard     = "/dashboard"
	PathStudents      = "/students"
	PathStaff         = "/staff"
	PathClasses       = "/classes"
	PathGrades        = "/grades"
	PathAttendance    = "/attendance"
	PathReports       = "/reports"
	PathSettings      = "/settings"
	PathMyGrades      = "/my/grades"
	PathMySchedule    = "/my/schedule"
	PathClassDiary    = "/classes/:year/:class/:section"
)

// ViewNotFound is rendered by the catch-all route.
const ViewNotFound = "not-found"

// RouteDescriptor binds a URL path pattern to a view and its requirement.
// Public routes bypass the guard entirely. An empty Required set on a
// non-public route means "any authenticated role".
type RouteDescriptor struct {
	Pattern    string
	View       string
	Public     bool
	Required   []rbac.Capability
	RedirectTo string
	// paramRules constrains named segments; a segment with no rule accepts
	// any non-empty value.
	paramRules map[string]*regexp.Regexp
}

var (
	reYear    = regexp.MustCompile(`^\d{4}$`)
	reClassID = regexp.MustCompile(`^\d+$`)
	reSection = regexp.MustCompile(`^[A-Za-z]$`)
)

var routeTable = []RouteDescriptor{
	{Pattern: PathRoot, RedirectTo: PathDashboard},

	// Unauthenticated family.
	{Pattern: PathLogin, View: "login", Public: true},
	{Pattern: PathForgotPass, View: "forgot-password", Public: true},
	{Pattern: PathResetPass, View: "reset-password", Public: true},

	// Authenticated family.
	{Pattern: PathDashboard, View: "dashboard"},
	{Pattern: PathStudents, View: "students", Required: []rbac.Capability{rbac.ActsAsStaff}},
	{Pattern: PathStaff, View: "staff", Required: []rbac.Capability{rbac.ActsAsManagement}},
	{Pattern: PathClasses, View: "classes", Required: []rbac.Capability{rbac.ActsAsStaff}},
	{Pattern: PathGrades, View: "grades", Required: []rbac.Capability{rbac.ActsAsTeacher}},
	{Pattern: PathAttendance, View: "attendance", Required: []rbac.Capability{rbac.ActsAsAnyStaff}},
	{Pattern: PathReports, View: "reports", Required: []rbac.Capability{rbac.ActsAsStaff}},
	{Pattern: PathSettings, View: "settings", Required: []rbac.Capability{rbac.ActsAsManagement}},
	{Pattern: PathMyGrades, View: "my-grades", Required: []rbac.Capability{rbac.ActsAsLearner}},
	{Pattern: PathMySchedule, View: "my-schedule", Required: []rbac.Capability{rbac.ActsAsLearner}},

	// Open to every authenticated role regardless of capability.
	{
		Pattern: PathClassDiary,
		View:    "class-diary",
		paramRules: map[string]*regexp.Regexp{
			"year":    reYear,
			"class":   reClassID,
			"section": reSection,
		},
	},
}

// Routes returns a copy of the static route table.
func Routes() []RouteDescriptor {
	out := make([]RouteDescriptor, len(routeTable))
	copy(out, routeTable)
	return out
}

// NotFoundRoute is the catch-all descriptor returned when no pattern matches.
func NotFoundRoute() RouteDescriptor {
	return RouteDescriptor{Pattern: "*", View: ViewNotFound, Public: true}
}

// Match resolves a concrete path against the route table. It returns the
// matching descriptor and extracted parameters. When nothing matches, the
// catch-all not-found descriptor is returned with ok=false.
func Match(path string) (RouteDescriptor, map[string]string, bool) {
	for _, rd := range routeTable {
		if params, ok := matchPattern(rd, path); ok {
			return rd, params, true
		}
	}
	return NotFoundRoute(), nil, false
}

func matchPattern(rd RouteDescriptor, path string) (map[string]string, bool) {
	if !strings.Contains(rd.Pattern, ":") {
		if rd.Pattern == path {
			return nil, true
		}
		return nil, false
	}

	want := splitPath(rd.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range want {
		if !strings.HasPrefix(seg, ":") {
			if seg != got[i] {
				return nil, false
			}
			continue
		}
		name := seg[1:]
		val := got[i]
		if val == "" {
			return nil, false
		}
		if rule, ok := rd.paramRules[name]; ok && !rule.MatchString(val) {
			return nil, false
		}
		params[name] = val
	}
	return params, true
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}
