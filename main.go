package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ghostbit/handlers"
)

func main() {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Request-Id", "X-Stego-PSNR", "X-Stego-Container-Size", "Content-Disposition"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	audioHandler := handlers.NewAudioHandler()

	api := router.Group("/api/v1")
	{
		api.GET("/health", audioHandler.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/encode", audioHandler.Encode)
			stego.POST("/decode", audioHandler.Decode)
			stego.POST("/analyze", audioHandler.Analyze)
			stego.POST("/capacity", audioHandler.Capacity)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/stego/encode   - Hide secret files in a carrier (returns stego WAV)")
	log.Printf("  POST /api/v1/stego/decode   - Extract hidden files from a carrier")
	log.Printf("  POST /api/v1/stego/analyze  - Inspect a carrier without extracting")
	log.Printf("  POST /api/v1/stego/capacity - Estimate how much a carrier can hold")
	log.Printf("  GET  /api/v1/health         - Health check")

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
