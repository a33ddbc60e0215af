package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerRegistryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/squads", handler.ListSquads)
	mux.HandleFunc("GET /v1/squads/{name}", handler.GetSquad)
	mux.HandleFunc("GET /v1/players/free-agents", handler.ListFreeAgents)
	mux.HandleFunc("GET /v1/players/search", handler.SearchPlayers)
	mux.HandleFunc("GET /v1/players/roles/{role}", handler.ListPlayersByRole)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
}
