package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/gardenia-app/gardenia-api/auth"
	"github.com/gardenia-app/gardenia-api/config"
	"github.com/gardenia-app/gardenia-api/controllers"
	"github.com/gardenia-app/gardenia-api/database"
	"github.com/gardenia-app/gardenia-api/mailer"
	"github.com/gardenia-app/gardenia-api/plantnet"
	"github.com/gardenia-app/gardenia-api/routes"
	"github.com/gardenia-app/gardenia-api/storage"
	"github.com/gardenia-app/gardenia-api/templates"
	"github.com/gardenia-app/gardenia-api/wikipedia"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	env, err := config.LoadEnv()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if env.SecretKey == "" {
		logger.Error("SECRET_KEY is required")
		os.Exit(1)
	}

	db, err := database.NewPostgresClient(env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	// Redis is an optional lookaside cache, the database stays authoritative.
	var redisClient *database.RedisClient
	if env.RedisAddr != "" {
		redisClient, err = database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("redis not configured, token cache disabled")
	}

	var m mailer.Mailer
	if env.SMTPServer != "" {
		m = mailer.NewSMTPMailer(env.SMTPServer, env.SMTPPort, env.SMTPUsername, env.SMTPPassword,
			env.SenderEmail, env.FrontendURL, env.PasswordResetTokenExpireMinutes)
	} else {
		logger.Warn("smtp not configured, emails will only be logged")
		m = mailer.NewLogMailer(logger)
	}

	uploader, err := storage.NewS3Storage(context.Background(),
		env.AWSRegion, env.AWSAccessKeyID, env.AWSSecretAccessKey, env.S3BucketName)
	if err != nil {
		logger.Error("failed to configure s3 storage", "error", err)
		os.Exit(1)
	}

	svc := auth.NewService(db, redisClient, m, logger, env)

	plantnetClient := plantnet.NewClient(plantnet.Config{
		APIURL:         env.PlantNetAPIURL,
		APIKey:         env.PlantNetAPIKey,
		IncludeRelated: env.PlantNetIncludeRelated,
		Language:       env.PlantNetLanguage,
		NbResults:      env.PlantNetNbResults,
	})
	wikiClient := wikipedia.NewClient(env.WikipediaAPIURL)

	router := gin.Default()
	router.SetHTMLTemplate(templates.Parse())

	routes.SetupRoutes(router, routes.Controllers{
		Auth:     controllers.NewAuthController(svc),
		User:     controllers.NewUserController(svc),
		Garden:   controllers.NewGardenController(db, uploader),
		Note:     controllers.NewNoteController(db),
		Post:     controllers.NewPostController(db),
		Plant:    controllers.NewPlantInfoController(wikiClient),
		Identify: controllers.NewIdentifyController(plantnetClient, env.PlantNetMaxImages, env.PlantNetMaxImageSize),
	})

	logger.Info("starting server", "addr", env.ServerAddr)
	if err := router.Run(env.ServerAddr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
