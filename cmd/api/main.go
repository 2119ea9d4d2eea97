package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/handler"
	apimiddleware "github.com/mohamedidrisssalhi/Convo/internal/adapter/api/middleware"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/api/router"
	"github.com/mohamedidrisssalhi/Convo/internal/adapter/repository"
	"github.com/mohamedidrisssalhi/Convo/internal/infrastructure/websocket"
	"github.com/mohamedidrisssalhi/Convo/internal/usecase"
	"github.com/mohamedidrisssalhi/Convo/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account comes from the environment in production, from a file in
	// local development. With neither set, application default credentials apply.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	roomRepo := repository.NewFirestoreRoomRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	unreadLedger := repository.NewFirestoreUnreadLedger(firestoreClient)

	hub := websocket.NewHub()

	messageUseCase := usecase.NewMessageUseCase(messageRepo, userRepo, roomRepo, unreadLedger, hub)
	roomUseCase := usecase.NewRoomUseCase(roomRepo, userRepo, hub)
	friendUseCase := usecase.NewFriendUseCase(userRepo, hub)

	// The hub needs durable membership for rebroadcasts; the room use case needs
	// the hub for the same rebroadcasts. Wire the cycle after construction.
	hub.SetMemberLister(roomUseCase)

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	messageHandler := handler.NewMessageHandler(messageUseCase)
	roomHandler := handler.NewRoomHandler(roomUseCase)
	friendHandler := handler.NewFriendHandler(friendUseCase)
	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	router.SetupMessageRouter(e, messageHandler, authMiddleware)
	router.SetupRoomRouter(e, roomHandler, messageHandler, authMiddleware)
	router.SetupFriendRouter(e, friendHandler, authMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)

	log.Printf("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server stopped: %v", err)
	}
}
