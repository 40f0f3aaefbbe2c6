package constants

// Static route constants
const (
	PublicRoute       = "/"
	LoginRoute        = "/login"
	RegisterRoute     = "/register"
	ApplicationsRoute = "/applications"
	SettingsRoute     = "/user/settings"
)
