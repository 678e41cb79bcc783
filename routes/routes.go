package routes

import "github.com/Sairajgoud-kodipaka/dashboard-auth/users"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Landing Routes - one dashboard per role
	RoutePlatformDashboard      = "/platform/dashboard"
	RouteBusinessAdminDashboard = "/business-admin/dashboard"
	RouteManagerDashboard       = "/manager/dashboard"
	RouteSalesDashboard         = "/sales/dashboard"
	RouteMarketingDashboard     = "/marketing/dashboard"
	RouteTelecallerDashboard    = "/telecaller/dashboard"
)

// DefaultDashboard is where unrecognized roles land. Role taxonomies grow
// over time on the backend; an unknown role gets the least privileged
// dashboard rather than an error page.
const DefaultDashboard = RouteSalesDashboard

var landingPaths = map[users.Role]string{
	users.RolePlatformAdmin: RoutePlatformDashboard,
	users.RoleBusinessAdmin: RouteBusinessAdminDashboard,
	users.RoleManager:       RouteManagerDashboard,
	users.RoleSalesTeam:     RouteSalesDashboard,
	users.RoleInhouseSales:  RouteSalesDashboard,
	users.RoleMarketing:     RouteMarketingDashboard,
	users.RoleTeleCalling:   RouteTelecallerDashboard,
}

// ForRole returns the canonical landing path for a role. Both the
// post-login redirect and the guard's role-mismatch redirect go through
// this single table so the two paths can never disagree.
func ForRole(role users.Role) string {
	if path, ok := landingPaths[role]; ok {
		return path
	}
	return DefaultDashboard
}
