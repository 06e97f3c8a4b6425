package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/connectpp/student-network/internal/config"
	"github.com/connectpp/student-network/internal/database"
	"github.com/connectpp/student-network/internal/handler"
	"github.com/connectpp/student-network/internal/logging"
	"github.com/connectpp/student-network/internal/mail"
	"github.com/connectpp/student-network/internal/middleware"
	"github.com/connectpp/student-network/internal/queue"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/router"
	"github.com/connectpp/student-network/internal/service"
	"github.com/connectpp/student-network/internal/token"
	"github.com/connectpp/student-network/internal/utils"
)

func main() {
	_ = godotenv.Load() // a .env file is optional; real environment wins

	cfg, err := config.Load() // Load environment config
	if err != nil {
		// the logger is not configured yet
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Dir: cfg.LogDir, Name: "connectpp", Debug: !cfg.IsProd()})
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// run wires every component and serves until SIGINT or SIGTERM.
func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}

	access, err := token.NewAccessCodec(cfg.AppSecret)
	if err != nil {
		return err
	}
	otp, err := token.NewOTPCodec(cfg.OTPSecret)
	if err != nil {
		return err
	}
	cipher, err := utils.NewCipher(cfg.CipherSecret)
	if err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	secrets := repository.NewKeyValueRepo(db)
	mailer := mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.FromName, secrets, cipher)

	var events service.EventPublisher = queue.Nop{}
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue, log)
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	auth := service.NewAuthService(users, access, otp, mailer, events, log, cfg.Mail.Domain)
	search := service.NewSearchService(users, access)

	// Redis is optional; without it the search profile reads are not cached.
	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn("redis unavailable, search profile cache disabled")
	}
	searchCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log)

	e := router.New(router.Handlers{
		Auth:        handler.NewAuthHandler(auth, log),
		Profile:     handler.NewProfileHandler(repository.NewPublicProfileRepo(db), repository.NewProgrammingProfileRepo(db), log),
		Projects:    handler.NewProjectHandler(repository.NewProjectRepo(db), log),
		Tech:        handler.NewTechHandler(repository.NewTechRepo(db), log),
		Search:      handler.NewSearchHandler(search, log),
		Access:      access,
		SearchCache: searchCache,
		DB:          db,
	}, log)

	addr := ":" + cfg.Port // Address string with port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))

	errc := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
