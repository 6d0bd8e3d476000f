package main

import (
	"log"

	"nomify/config"
	"nomify/controllers"
	"nomify/routes"
	"nomify/services"
	"nomify/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	vision, err := services.NewVisionService()
	if err != nil {
		log.Fatalf("failed to init vision service: %v", err)
	}

	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Fatalf("failed to init push service: %v", err)
	}

	hub := services.NewRealtimeHub()
	services.InitAlertDeps(config.DB, hub, push)

	pipelines := services.NewPipelineController(
		services.NewGeminiService(),
		services.NewVisionClient(),
		services.NewUSDAService(),
	)
	pipelines.OnTransition(hub.BroadcastState)

	r := routes.SetupRouter(routes.Deps{
		Analysis: controllers.NewAnalysisController(pipelines),
		Vision:   controllers.NewVisionController(vision),
		Realtime: controllers.NewRealtimeController(hub, pipelines),
		Devices:  controllers.NewDeviceController(push),
	})
	r.Run(":8080")
}
