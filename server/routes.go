package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthSignIn, ChainMiddleware(s.SignInHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthSignUp, ChainMiddleware(s.SignUpHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthSignOut, ChainMiddleware(s.SignOutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthProvider, ChainMiddleware(s.ProviderRedirectHandler(), s.PageMiddleware()...))

	// COURSE CATALOGUE
	s.RegisterRouteHandler("GET "+RouteAPICategories, ChainMiddleware(s.CategoriesHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteAPICourses, ChainMiddleware(s.CoursesHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteAPICourse, ChainMiddleware(s.CourseHandler(), s.APIMiddleware(s.RequireSession)...))

	// UI
	s.RegisterRouteHandler("GET "+RouteUI, ChainMiddleware(s.UIHandler(), s.PageMiddleware(s.RouteGuard, s.CacheMiddleware)...))
}
