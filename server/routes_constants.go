package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthSignIn   = "/auth/sign-in"
	RouteAuthSignUp   = "/auth/sign-up"
	RouteAuthSignOut  = "/auth/sign-out"
	RouteAuthSession  = "/auth/session"
	RouteAuthProvider = "/auth/{provider}"

	// Course catalogue API Routes
	RouteAPICategories = "/api/course-categories"
	RouteAPICourses    = "/api/courses"
	RouteAPICourse     = "/api/courses/{id}"

	// UI pages (served from UI_DIR)
	RouteUI     = "/{file...}"
	RouteSignIn = "/sign-in"
	RouteSignUp = "/sign-up"
	RouteHome   = "/"
)
