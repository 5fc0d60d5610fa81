package nav

// Package nav holds the static navigation data for the portal: per-role menu
// tables, dashboard selection, and the route table. Everything here is loaded
// once and never mutated.

import (
	domainsession "github.com/escolaweb/portal-core/internal/domain/session"
)

// MenuEntry is one item of the persistent navigation surface.
type MenuEntry struct {
	Path  string
	Label string
	Icon  string
}

// Dashboard identifies the concrete landing view rendered at /dashboard.
type Dashboard string

const (
	DashboardAdmin   Dashboard = "dashboard-admin"
	DashboardTeacher Dashboard = "dashboard-teacher"
	DashboardMonitor Dashboard = "dashboard-monitor"
	DashboardLearner Dashboard = "dashboard-learner"
)

var managementMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathStudents, Label: "Students", Icon: "users"},
	{Path: PathStaff, Label: "Staff", Icon: "briefcase"},
	{Path: PathClasses, Label: "Classes", Icon: "layers"},
	{Path: PathGrades, Label: "Grades", Icon: "clipboard"},
	{Path: PathReports, Label: "Reports", Icon: "bar-chart"},
	{Path: PathSettings, Label: "Settings", Icon: "settings"},
}

var registrarMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathStudents, Label: "Students", Icon: "users"},
	{Path: PathClasses, Label: "Classes", Icon: "layers"},
	{Path: PathReports, Label: "Reports", Icon: "bar-chart"},
}

var teacherMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathGrades, Label: "Grades", Icon: "clipboard"},
	{Path: PathAttendance, Label: "Attendance", Icon: "check-square"},
}

var monitorMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathAttendance, Label: "Attendance", Icon: "check-square"},
}

var studentMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathMyGrades, Label: "My Grades", Icon: "clipboard"},
	{Path: PathMySchedule, Label: "Schedule", Icon: "calendar"},
}

var guardianMenu = []MenuEntry{
	{Path: PathDashboard, Label: "Dashboard", Icon: "home"},
	{Path: PathMyGrades, Label: "Grades", Icon: "clipboard"},
	{Path: PathMySchedule, Label: "Schedule", Icon: "calendar"},
}

// MenuFor returns the ordered menu for a role. The absent or unmapped role
// falls back to the student table, the least privileged surface.
func MenuFor(role domainsession.Role) []MenuEntry {
	var src []MenuEntry
	switch role {
	case domainsession.RoleManagement:
		src = managementMenu
	case domainsession.RoleRegistrar:
		src = registrarMenu
	case domainsession.RoleTeacher:
		src = teacherMenu
	case domainsession.RoleMonitor:
		src = monitorMenu
	case domainsession.RoleGuardian:
		src = guardianMenu
	default:
		src = studentMenu
	}
	out := make([]MenuEntry, len(src))
	copy(out, src)
	return out
}

// DashboardFor selects the landing view for a role, first match in priority
// order. The admin fallback for an unmapped role is a defensive default that
// must never be reached under correct backend data.
func DashboardFor(role domainsession.Role) Dashboard {
	switch role {
	case domainsession.RoleManagement, domainsession.RoleRegistrar:
		return DashboardAdmin
	case domainsession.RoleTeacher:
		return DashboardTeacher
	case domainsession.RoleMonitor:
		return DashboardMonitor
	case domainsession.RoleStudent, domainsession.RoleGuardian:
		return DashboardLearner
	}
	return DashboardAdmin
}
