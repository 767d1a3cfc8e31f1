package main

import (
	"context"
	"net/http"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/davidmmovement/agent-finder-api/internal/app"
	"github.com/davidmmovement/agent-finder-api/internal/config"
	"github.com/davidmmovement/agent-finder-api/internal/controllers"
	"github.com/davidmmovement/agent-finder-api/internal/repositories"
	"github.com/davidmmovement/agent-finder-api/internal/routes"
	"github.com/davidmmovement/agent-finder-api/internal/services"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize agent-finder-api:", err)
	}
	defer application.Close()

	agentRepo := repositories.NewAgentRepository(application.DB)

	if cfg.SeedTestData {
		if err := app.SeedTestData(context.Background(), agentRepo); err != nil {
			utils.Logger.WithError(err).Fatal("Failed to seed test data")
		}
	}

	geocodingService := services.NewGeocodingService(cfg.GMapsAPIKey)
	routingService := services.NewRoutingService(cfg.GMapsAPIKey)
	propertyInfoService := services.NewPropertyInfoService(cfg.GMapsAPIKey, cfg.OverpassURL)

	searchService := services.NewSearchService(agentRepo, geocodingService, routingService, propertyInfoService)
	agentService := services.NewAgentService(agentRepo, geocodingService)

	searchController := controllers.NewSearchController(searchService)
	agentsController := controllers.NewAgentsController(agentService)
	healthController := controllers.NewHealthController(application)

	router := mux.NewRouter()

	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Literal paths must outrank the {id} wildcards, so matching and
	// analytics routes are registered first.
	router.HandleFunc(routes.FindClosest, searchController.FindClosestHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.FindClosestByRoad, searchController.FindClosestByRoadHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.FindNearby, searchController.FindNearbyHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.BuildingInfo, searchController.BuildingInfoHandler).Methods(http.MethodPost)

	router.HandleFunc(routes.AgentsSearchArea, agentsController.SearchByAreaHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AnalyticsStats, agentsController.StatsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AgentAvailability, agentsController.UpdateAvailabilityHandler).Methods(http.MethodPatch, http.MethodPut)

	router.HandleFunc(routes.AgentsBase, agentsController.CreateAgentHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AgentsBase, agentsController.ListAgentsHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AgentByID, agentsController.GetAgentHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.AgentByID, agentsController.UpdateAgentHandler).Methods(http.MethodPatch, http.MethodPut)
	router.HandleFunc(routes.AgentByID, agentsController.DeactivateAgentHandler).Methods(http.MethodDelete)
	router.HandleFunc(routes.AgentReactivate, agentsController.ReactivateAgentHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AgentTimeSlots, agentsController.AddTimeSlotHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.AgentTimeSlot, agentsController.RemoveTimeSlotHandler).Methods(http.MethodDelete)

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Server failed:", err)
	}
}
