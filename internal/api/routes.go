package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	apperrors "surcan_assistant_backend/internal/errors"
	"surcan_assistant_backend/internal/messaging"
	"surcan_assistant_backend/internal/models"
	"surcan_assistant_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const identityCookie = "uid"
const identityCookieMaxAge = 365 * 24 * 60 * 60

// apologyText is the only failure text an end user ever sees; internal
// error detail stays in the logs.
const apologyText = "Lo siento, hubo un problema al procesar tu solicitud."

// RouterConfig carries everything the HTTP surface depends on.
type RouterConfig struct {
	VerifyToken string
	AppSecret   string // optional; enables X-Hub-Signature-256 checks
	Tracker     *services.ConversationTracker
	Assistant   services.Assistant
	Searcher    services.ProductSearcher
	History     services.HistoryStore
	Usage       services.UsageCounter
	Senders     map[string]messaging.Sender // keyed by webhook object
}

// CarouselItem is one card of a product carousel response.
type CarouselItem struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	Subtitle  string `json:"subtitle"`
	ActionURL string `json:"action_url"`
}

func SetupRoutes(r *gin.Engine, cfg RouterConfig) {
	r.GET("/health", healthHandler)
	r.GET("/webhook", verifyWebhookHandler(cfg))
	r.POST("/webhook", webhookHandler(cfg))

	r.POST("/chat", Identity(), chatHandler(cfg))
	r.POST("/search_product", Identity(), searchProductHandler(cfg))
	r.POST("/reset", Identity(), resetHandler(cfg))
	r.GET("/usage", usageHandler(cfg))
}

// Identity reads the long-lived identifier cookie, minting one on first
// contact, and exposes it to handlers under "uid".
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := c.Cookie(identityCookie)
		if err != nil || uid == "" {
			uid = uuid.NewString()
			c.SetCookie(identityCookie, uid, identityCookieMaxAge, "/", "", false, true)
		}
		c.Set("uid", uid)
		c.Next()
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func verifyWebhookHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.Query("hub.mode")
		token := c.Query("hub.verify_token")
		challenge := c.Query("hub.challenge")

		if mode == "" && token == "" && challenge == "" {
			// Bare GET from a load balancer probe.
			c.Status(http.StatusOK)
			return
		}

		if mode == "subscribe" && token == cfg.VerifyToken {
			c.String(http.StatusOK, challenge)
			return
		}

		log.Warn().Str("mode", mode).Msg("webhook verification failed")
		c.String(http.StatusForbidden, "Verification token mismatch")
	}
}

func webhookHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Error reading request body"))
			return
		}

		if cfg.AppSecret != "" && !validSignature(body, c.GetHeader("X-Hub-Signature-256"), cfg.AppSecret) {
			apperrors.HandleError(c, apperrors.New403Error("Invalid payload signature"))
			return
		}

		var event WebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			apperrors.HandleError(c, apperrors.New400Error("Invalid webhook payload"))
			return
		}

		for _, msg := range event.Inbound() {
			if err := handleInbound(c, cfg, msg); err != nil {
				// Persistence failure: surface as a hard failure so the
				// platform redelivers.
				apperrors.HandleError(c, err)
				return
			}
		}

		c.String(http.StatusOK, "EVENT_RECEIVED")
	}
}

func handleInbound(c *gin.Context, cfg RouterConfig, msg InboundMessage) error {
	ctx := c.Request.Context()

	if _, err := cfg.Tracker.ResolveConversation(ctx, msg.UserID, time.Now()); err != nil {
		return err
	}

	reply, err := cfg.Assistant.Reply(ctx, msg.UserID, msg.Text)
	if err != nil {
		log.Error().Err(err).Str("platform", msg.Platform).Msg("reply generation failed")
		reply = services.Reply{Text: apologyText}
	}

	sender, ok := cfg.Senders[msg.Platform]
	if !ok {
		log.Error().Str("platform", msg.Platform).Msg("no sender configured")
		return nil
	}

	if len(reply.Products) > 0 {
		err = sender.SendProducts(ctx, msg.UserID, reply.Text, reply.Products)
	} else {
		err = sender.SendText(ctx, msg.UserID, reply.Text)
	}
	if err != nil {
		log.Error().Err(err).Str("platform", msg.Platform).Msg("send failed")
	}
	return nil
}

func validSignature(body []byte, header, secret string) bool {
	const prefix = "sha256="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header[len(prefix):]))
}

func chatHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.Message == "" {
			apperrors.HandleError(c, apperrors.New400Error("No message provided"))
			return
		}

		uid := c.GetString("uid")

		if _, err := cfg.Tracker.ResolveConversation(c.Request.Context(), uid, time.Now()); err != nil {
			apperrors.HandleError(c, err)
			return
		}

		reply, err := cfg.Assistant.Reply(c.Request.Context(), uid, request.Message)
		if err != nil {
			log.Error().Err(err).Msg("reply generation failed")
			c.JSON(http.StatusOK, gin.H{"response": apologyText})
			return
		}

		if len(reply.Products) > 0 {
			c.JSON(http.StatusOK, gin.H{
				"response": reply.Text,
				"products": carousel(reply.Products),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response": reply.Text})
	}
}

func carousel(products []models.Product) []CarouselItem {
	items := make([]CarouselItem, 0, len(products))
	for _, p := range products {
		items = append(items, CarouselItem{
			Title:     p.Title,
			ImageURL:  p.Image,
			Subtitle:  p.Price,
			ActionURL: p.Link,
		})
	}
	return items
}

func searchProductHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			ProductName string `json:"product_name"`
		}
		if err := c.ShouldBindJSON(&request); err != nil || request.ProductName == "" {
			apperrors.HandleError(c, apperrors.New400Error("No se proporcionó el nombre del producto"))
			return
		}

		products, err := cfg.Searcher.Search(c.Request.Context(), request.ProductName)
		if err != nil {
			log.Error().Err(err).Str("product", request.ProductName).Msg("product search failed")
			c.JSON(http.StatusOK, gin.H{"response": apologyText})
			return
		}

		c.JSON(http.StatusOK, products)
	}
}

func resetHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("uid")
		if err := cfg.History.Reset(c.Request.Context(), uid); err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "session reset"})
	}
}

func usageHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		daily, monthly, err := cfg.Usage.Counts(c.Request.Context(), time.Now())
		if err != nil {
			apperrors.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"daily_count":   daily,
			"monthly_count": monthly,
		})
	}
}
