package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteProviders, ChainMiddleware(s.ProvidersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCSRF, ChainMiddleware(s.CSRFHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCredentialsCallback, ChainMiddleware(s.CredentialsSignInHandler(), s.BrowserMiddleware(s.CSRFMiddleware)...))

	if s.google != nil {
		s.RegisterRouteHandler("GET "+RouteGoogleSignIn, ChainMiddleware(s.GoogleSignInHandler(), s.BrowserMiddleware()...))
		s.RegisterRouteHandler("GET "+RouteGoogleCallback, ChainMiddleware(s.GoogleCallbackHandler(), s.BrowserMiddleware()...))
	}

	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("OPTIONS "+RouteToken, ChainMiddleware(s.TokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.BrowserMiddleware(s.CSRFMiddleware)...))
}
