package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"goji.io"
	"goji.io/pat"

	"github.com/listora/listora/internal/category"
	"github.com/listora/listora/internal/config"
	"github.com/listora/listora/internal/database"
	"github.com/listora/listora/internal/email"
	"github.com/listora/listora/internal/listing"
	"github.com/listora/listora/internal/middleware"
	"github.com/listora/listora/internal/models"
	"github.com/listora/listora/internal/token"
	"github.com/listora/listora/internal/upload"
	"github.com/listora/listora/internal/user"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// charger la config; le démarrage échoue si le secret JWT est absent
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("erreur lors du chargement de la configuration")
	}

	// initialiser la DB
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("erreur lors de la connexion à la base de données")
	}
	defer db.Close()

	// exec les migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal().Err(err).Msg("erreur lors de l'exécution des migrations")
	}

	// dossier d'uploads servi en statique
	uploadsDir := cfg.Upload.PublicDir + "/uploads"
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		logger.Fatal().Err(err).Msg("erreur lors de la création du dossier d'uploads")
	}

	// init les repos
	userRepo := user.NewPostgresRepository(db)
	listingRepo := listing.NewPostgresRepository(db)
	categoryRepo := category.NewPostgresRepository(db)

	// init les services
	emailService := email.NewService(cfg.SMTP, logger)
	uploadStore := upload.NewStore(cfg.Upload.PublicDir, cfg.Server.BaseURL)
	tokenService := token.NewService(cfg.JWT)

	userService := user.NewService(userRepo, emailService, uploadStore, cfg.Server.FrontendURL, logger)
	listingService := listing.NewService(listingRepo, userRepo, categoryRepo, uploadStore, logger)

	// init les handlers
	userHandlers := user.NewHandlers(userService, tokenService, uploadStore, logger)
	listingHandlers := listing.NewHandlers(listingService, logger)
	categoryHandlers := category.NewHandlers(categoryRepo, logger)

	// init les middlewares
	authMiddleware := middleware.NewAuthMiddleware(tokenService, logger)

	// creation multiplexeur goji
	mux := goji.NewMux()

	// route pour les fichiers uploadés
	uploadsServer := http.FileServer(http.Dir(uploadsDir))
	mux.Handle(pat.Get("/uploads/*"), http.StripPrefix("/uploads/", uploadsServer))

	// routes catégories
	mux.HandleFunc(pat.Get("/api/categories"), categoryHandlers.ListHandler)
	mux.HandleFunc(pat.Post("/api/categories"), categoryHandlers.CreateHandler)
	mux.HandleFunc(pat.Delete("/api/category/:id"), categoryHandlers.DeleteHandler)

	// routes annonces publiques
	mux.HandleFunc(pat.Get("/api/listings"), listingHandlers.ListHandler)
	mux.HandleFunc(pat.Get("/api/listing/:id"), listingHandlers.GetHandler)

	// routes comptes publiques
	mux.HandleFunc(pat.Get("/api/users"), userHandlers.ListHandler)
	mux.HandleFunc(pat.Post("/api/users/register"), userHandlers.RegisterHandler)
	mux.HandleFunc(pat.Post("/api/users/login"), userHandlers.LoginHandler)
	mux.HandleFunc(pat.Post("/api/users/verify-account"), userHandlers.VerifyHandler)
	mux.HandleFunc(pat.Post("/api/users/forgot-password"), userHandlers.ForgotPasswordHandler)
	mux.HandleFunc(pat.Post("/api/users/reset-password"), userHandlers.ResetPasswordHandler)
	mux.HandleFunc(pat.Post("/api/users/profile/update/:userid"), userHandlers.UpdateProfileHandler)

	// routes protegees
	protectedMux := goji.SubMux()
	protectedMux.Use(authMiddleware.RequireAuth)

	protectedMux.HandleFunc(pat.Get("/api/users/profile"), userHandlers.ProfileHandler)
	protectedMux.HandleFunc(pat.Post("/api/users/profile/update-picture"), userHandlers.UpdatePictureHandler)
	protectedMux.HandleFunc(pat.Post("/api/listings"), listingHandlers.SaveHandler)
	protectedMux.HandleFunc(pat.Delete("/api/listing/:id"), listingHandlers.DeleteHandler)

	// le tableau de bord est réservé au rôle "user"
	protectedMux.Handle(pat.Get("/api/users/dashboard"),
		authMiddleware.RequireRole(models.RoleUser)(http.HandlerFunc(listingHandlers.DashboardHandler)))

	// l'approbation est réservée aux admins
	protectedMux.Handle(pat.Put("/api/listing/approval"),
		authMiddleware.RequireRole(models.RoleAdmin)(http.HandlerFunc(listingHandlers.ApprovalHandler)))

	// add les routes protegees au mux principal
	mux.Handle(pat.New("/*"), protectedMux)

	// start le serv
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info().Str("addr", serverAddr).Msg("serveur démarré")
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		logger.Fatal().Err(err).Msg("erreur du serveur HTTP")
	}
}
