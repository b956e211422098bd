package server

// Route path constants
const (
	// Storefront pages the auth routes redirect to
	RouteLogin = "/login"
	RouteHome  = "/"

	// Sign-in
	RouteCSRF                = "/api/auth/csrf"
	RouteProviders           = "/api/auth/providers"
	RouteCredentialsCallback = "/api/auth/callback/credentials"
	RouteGoogleSignIn        = "/api/auth/signin/google"
	RouteGoogleCallback      = "/api/auth/callback/google"

	// Session
	RouteSession = "/api/auth/session"
	RouteToken   = "/api/auth/token"
	RouteSignOut = "/api/auth/signout"
)

// Error codes appended to RouteLogin after a failed sign-in.
const (
	ErrorCredentialsSignin = "CredentialsSignin"
	ErrorAccessDenied      = "AccessDenied"
	ErrorOAuthCallback     = "OAuthCallback"
)
