package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.Leaderboard)

	// Only the local identity provider can register and log users in.
	if handler.accountService == nil {
		return
	}
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedTeamRoutes(mux, handler, verifier)
	registerAuthorizedSubmissionRoutes(mux, handler, verifier)
	registerAuthorizedMatchRoutes(mux, handler, verifier)
}

func registerAuthorizedTeamRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me", RequireAuth(verifier, http.HandlerFunc(handler.Me)))
	mux.Handle("POST /v1/teams", RequireAuth(verifier, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("GET /v1/teams/{teamName}", RequireAuth(verifier, http.HandlerFunc(handler.GetTeam)))
	mux.Handle("POST /v1/teams/me/members", RequireAuth(verifier, http.HandlerFunc(handler.AddTeamMember)))
	mux.Handle("PUT /v1/teams/me/bracket", RequireAuth(verifier, http.HandlerFunc(handler.ChangeBracket)))
}

func registerAuthorizedSubmissionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/submissions/upload-url", RequireAuth(verifier, http.HandlerFunc(handler.RequestUploadURL)))
	mux.Handle("POST /v1/submissions", RequireAuth(verifier, http.HandlerFunc(handler.RecordSubmission)))
	mux.Handle("PUT /v1/submissions/active", RequireAuth(verifier, http.HandlerFunc(handler.ActivateSubmission)))
	mux.Handle("GET /v1/submissions", RequireAuth(verifier, http.HandlerFunc(handler.ListSubmissions)))
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches/requests", RequireAuth(verifier, http.HandlerFunc(handler.RequestMatch)))
	mux.Handle("GET /v1/matches/history", RequireAuth(verifier, http.HandlerFunc(handler.ListMatchHistory)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/admin/tournaments", RequireAdmin(verifier, http.HandlerFunc(handler.StartTournament)))
	mux.Handle("POST /v1/admin/scrimmages", RequireAdmin(verifier, http.HandlerFunc(handler.StartScrimmages)))
	mux.Handle("GET /v1/admin/permissions", RequireAdmin(verifier, http.HandlerFunc(handler.GetPermissions)))
	mux.Handle("POST /v1/admin/permissions", RequireAdmin(verifier, http.HandlerFunc(handler.SetPermissions)))
	mux.Handle("GET /v1/admin/matches", RequireAdmin(verifier, http.HandlerFunc(handler.ListAdminMatches)))
	mux.Handle("GET /v1/admin/submissions", RequireAdmin(verifier, http.HandlerFunc(handler.ListAllSubmissions)))
	mux.Handle("GET /v1/admin/dispatches", RequireAdmin(verifier, http.HandlerFunc(handler.ListDispatches)))
}
