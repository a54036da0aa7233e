package server

import (
	"log/slog"
	"net/http"

	"warmap-server/internal/alliance"
	allianceHandlers "warmap-server/internal/alliance/handlers"
	authHandlers "warmap-server/internal/auth/handlers"
	"warmap-server/internal/building"
	buildingHandlers "warmap-server/internal/building/handlers"
	"warmap-server/internal/middleware"
	"warmap-server/internal/player"
	playerHandlers "warmap-server/internal/player/handlers"
	"warmap-server/internal/prefs"
	prefsHandlers "warmap-server/internal/prefs/handlers"
	"warmap-server/internal/reward"
	rewardHandlers "warmap-server/internal/reward/handlers"
	serverHandlers "warmap-server/internal/server/handlers"
	"warmap-server/internal/shared/database"
	"warmap-server/internal/stream"
	"warmap-server/internal/worldmap"
	worldmapHandlers "warmap-server/internal/worldmap/handlers"
)

type Routes struct {
	db              *database.DB
	buildingService *building.Service
	allianceService *alliance.Service
	rewardService   *reward.Service
	playerService   *player.Service
	prefsService    *prefs.Service
	projection      worldmap.Projection
	hub             *stream.Hub
	logger          *slog.Logger
}

func NewRoutes(
	db *database.DB,
	buildingService *building.Service,
	allianceService *alliance.Service,
	rewardService *reward.Service,
	playerService *player.Service,
	prefsService *prefs.Service,
	projection worldmap.Projection,
	hub *stream.Hub,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:              db,
		buildingService: buildingService,
		allianceService: allianceService,
		rewardService:   rewardService,
		playerService:   playerService,
		prefsService:    prefsService,
		projection:      projection,
		hub:             hub,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	buildingHandler := buildingHandlers.NewBuildingHandler(r.buildingService, r.allianceService)
	allianceHandler := allianceHandlers.NewAllianceHandler(r.allianceService)
	rewardHandler := rewardHandlers.NewRewardHandler(r.rewardService)
	playerHandler := playerHandlers.NewPlayerHandler(r.playerService)
	groupHandler := playerHandlers.NewGroupHandler(r.playerService)
	rankHandler := playerHandlers.NewRankHandler(r.playerService)
	prefsHandler := prefsHandlers.NewPrefsHandler(r.prefsService)
	mapHandler := worldmapHandlers.NewMapHandler(r.projection, r.buildingService)
	authHandler := authHandlers.NewAuthHandler()

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(h)
	}

	mux.Handle("/api/server/health", healthHandler)

	// Buildings
	mux.HandleFunc("GET /api/buildings", buildingHandler.List)
	mux.HandleFunc("GET /api/buildings/export", buildingHandler.Export)
	mux.HandleFunc("GET /api/buildings/{id}", buildingHandler.Get)
	mux.HandleFunc("PATCH /api/buildings/{id}", buildingHandler.Update)
	mux.HandleFunc("PUT /api/buildings/{id}/protection", buildingHandler.SetProtection)
	mux.HandleFunc("PUT /api/buildings/{id}/schedule", buildingHandler.SetSchedule)
	mux.Handle("POST /api/buildings/reset", admin(buildingHandler.Reset))
	mux.Handle("POST /api/buildings/clear", admin(buildingHandler.Clear))
	mux.Handle("POST /api/buildings/import", admin(buildingHandler.Import))

	// Alliances
	mux.HandleFunc("GET /api/alliances", allianceHandler.List)
	mux.HandleFunc("GET /api/alliances/export", allianceHandler.Export)
	mux.HandleFunc("GET /api/alliances/{id}", allianceHandler.Get)
	mux.HandleFunc("PATCH /api/alliances/{id}", allianceHandler.Update)
	mux.Handle("POST /api/alliances", admin(allianceHandler.Add))
	mux.Handle("DELETE /api/alliances/{id}", admin(allianceHandler.Delete))
	mux.Handle("POST /api/alliances/reset", admin(allianceHandler.Reset))
	mux.Handle("POST /api/alliances/import", admin(allianceHandler.Import))

	// Reward table; edits are admin-only, lookups are open.
	mux.HandleFunc("GET /api/rewards", rewardHandler.List)
	mux.HandleFunc("GET /api/rewards/export", rewardHandler.Export)
	mux.HandleFunc("GET /api/rewards/cycle", rewardHandler.GetCycle)
	mux.Handle("PUT /api/rewards/cycle", admin(rewardHandler.SetCycle))
	mux.HandleFunc("GET /api/rewards/{id}", rewardHandler.Lookup)
	mux.Handle("PUT /api/rewards/{id}", admin(rewardHandler.SetCell))
	mux.Handle("POST /api/rewards/commit", admin(rewardHandler.Commit))
	mux.Handle("POST /api/rewards/reset", admin(rewardHandler.Reset))
	mux.Handle("POST /api/rewards/import", admin(rewardHandler.Import))

	// Player lookup proxy and import
	mux.HandleFunc("GET /api/player", playerHandler.Lookup)
	mux.HandleFunc("GET /api/players", playerHandler.ListCached)
	mux.HandleFunc("POST /api/players/import", playerHandler.Import)
	mux.HandleFunc("GET /api/players/import/last", playerHandler.LastImport)

	// Groups
	mux.HandleFunc("GET /api/groups", groupHandler.List)
	mux.HandleFunc("POST /api/groups", groupHandler.Create)
	mux.HandleFunc("POST /api/groups/move", groupHandler.MovePlayer)
	mux.HandleFunc("PATCH /api/groups/{id}", groupHandler.Rename)
	mux.HandleFunc("DELETE /api/groups/{id}", groupHandler.Delete)
	mux.HandleFunc("POST /api/groups/{id}/columns", groupHandler.AddColumn)
	mux.HandleFunc("DELETE /api/groups/{id}/columns/{columnId}", groupHandler.RemoveColumn)
	mux.HandleFunc("POST /api/groups/{id}/players", groupHandler.AddPlayer)
	mux.HandleFunc("DELETE /api/groups/{id}/players/{fid}", groupHandler.RemovePlayer)
	mux.HandleFunc("PUT /api/groups/{id}/players/{fid}/data", groupHandler.SetCustomData)

	// Ranks
	mux.HandleFunc("GET /api/ranks", rankHandler.List)
	mux.HandleFunc("PUT /api/ranks/{fid}", rankHandler.Assign)
	mux.HandleFunc("DELETE /api/ranks/{fid}", rankHandler.Remove)

	// Preferences
	mux.HandleFunc("GET /api/prefs", prefsHandler.Get)
	mux.HandleFunc("PUT /api/prefs", prefsHandler.Put)

	// Map projection and pointer hit-testing
	mux.HandleFunc("POST /api/map/hittest", mapHandler.HitTest)
	mux.HandleFunc("POST /api/map/project", mapHandler.Project)

	// Live status stream
	mux.HandleFunc("/ws/status", r.hub.Handler)

	// Auth
	mux.HandleFunc("POST /auth/token", authHandler.Token)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.Handle("GET /auth/me", middleware.JWTMiddleware(http.HandlerFunc(authHandler.Me)))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/buildings", "/api/alliances", "/api/rewards", "/api/player", "/api/groups", "/api/ranks", "/api/prefs", "/api/map"},
		"admin_endpoints", []string{"/api/buildings/reset", "/api/buildings/clear", "/api/alliances/reset", "/api/rewards"},
		"stream_endpoints", []string{"/ws/status"},
		"auth_endpoints", []string{"/auth/token", "/auth/logout", "/auth/me"},
	)

	return mux
}
