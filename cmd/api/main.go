package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"surcan_assistant_backend/cmd/api/config"
	"surcan_assistant_backend/internal/api"
	"surcan_assistant_backend/internal/database"
	"surcan_assistant_backend/internal/messaging"
	"surcan_assistant_backend/internal/services"
	"surcan_assistant_backend/internal/wsocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	geminiAPIKey := mustGetEnv("GEMINI_API_KEY")
	verifyToken := mustGetEnv("VERIFY_TOKEN")
	accessToken := mustGetEnv("ACCESS_TOKEN")
	phoneNumberID := mustGetEnv("PHONE_NUMBER_ID")
	appSecret := os.Getenv("APP_SECRET") // optional; enables signature checks
	storefrontURL := getEnv("STOREFRONT_URL", "https://tienda.anywayinsumos.com.ar")

	ctx := context.Background()

	database.InitDB()

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create GenAI client: %v", err)
	}
	defer genaiClient.Close()

	model := genaiClient.GenerativeModel(getEnv("GEMINI_MODEL", "gemini-1.5-flash"))
	model.SetTemperature(0.1)

	cfg := config.NewConfig()

	conversationStore := services.NewConversationStoreDB(database.DB)
	usageCounter := services.NewUsageCounterDB(database.DB)
	historyStore := services.NewHistoryStoreDB(database.DB)
	tracker := services.NewConversationTracker(conversationStore, usageCounter, cfg.SessionTimeout)
	searcher := services.NewProductSearchService(storefrontURL, cfg.ScrapeTimeout)
	assistant := services.NewAssistant(model, historyStore, searcher, cfg.MaxHistory)

	whatsappClient := messaging.NewWhatsAppClient(accessToken, phoneNumberID, cfg.SendTimeout)
	messengerClient := messaging.NewMessengerClient(accessToken, cfg.SendTimeout)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	api.SetupRoutes(r, api.RouterConfig{
		VerifyToken: verifyToken,
		AppSecret:   appSecret,
		Tracker:     tracker,
		Assistant:   assistant,
		Searcher:    searcher,
		History:     historyStore,
		Usage:       usageCounter,
		Senders: map[string]messaging.Sender{
			api.ObjectWhatsApp:  whatsappClient,
			api.ObjectInstagram: messengerClient,
			api.ObjectMessenger: messengerClient,
		},
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // widget is embedded on third-party storefronts
		},
	}
	wsHandler := wsocket.NewHandler(tracker, assistant, historyStore, upgrader)

	r.GET("/ws", api.Identity(), func(c *gin.Context) {
		wsHandler.HandleWebSocket(c.Writer, c.Request, c.GetString("uid"))
	})

	port := getEnv("PORT", "5000")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s is not set in the environment", key)
	}
	return value
}
