package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"wanderlust/admin"
	"wanderlust/auth"
	"wanderlust/blog"
	"wanderlust/booking"
	"wanderlust/config"
	"wanderlust/contact"
	"wanderlust/db"
	"wanderlust/itinerary"
	"wanderlust/live"
	"wanderlust/logx"
	"wanderlust/mailer"
	"wanderlust/middleware"
	"wanderlust/mq"
	"wanderlust/packages"
	"wanderlust/pages"
	"wanderlust/profile"
	"wanderlust/ratelim"
	"wanderlust/rdx"
	"wanderlust/routes"
	"wanderlust/services"
	"wanderlust/storage"
	"wanderlust/utils"
)

const cacheTTL = 10 * time.Minute

type redisPinger struct{ rc *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rc.Ping(ctx).Err() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no configured logger yet
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logx.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rc, err := rdx.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	cache := rdx.NewCache(rc, cacheTTL)
	revalidator := mq.NewRevalidator(cache, rc)

	hub := live.NewHub(log)
	go hub.Run()

	// other instances' revalidations reach this instance's cache and live feed
	go mq.Listen(ctx, rc, cache, log, func(ev mq.Event) {
		hub.Broadcast(live.Event{Type: live.Revalidated, Paths: ev.Paths, At: ev.At})
	})

	s3, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("object storage")
	}
	images := storage.NewImages(s3)

	dispatcher := mailer.NewDispatcher(mailer.NewResendSender(cfg.Email), log)

	packageSvc := services.NewPackageService(store.Packages)
	blogSvc := services.NewBlogService(store.Posts)
	userSvc := services.NewUserService(store.Users)
	contactSvc := services.NewContactService(store.Contacts)
	itinerarySvc := services.NewItineraryService(store.Itineraries)
	bookingSvc := services.NewBookingService(store.Bookings)
	resetSvc := services.NewPasswordResetService(store.PasswordResets)

	sessions := middleware.NewSessions(cfg.Auth)
	proxies, err := utils.ParseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("trusted proxies")
	}
	limiter := ratelim.NewRateLimiter(20, 5, proxies...)
	go limiter.Janitor(ctx, time.Minute)

	admins := cfg.Email.AdminAddress
	resetTTL := time.Duration(cfg.Auth.ResetTTLMinutes) * time.Minute
	h := &routes.Handlers{
		Sessions: sessions,
		Limiter:  limiter,

		Packages:  packages.NewHandler(packageSvc, cache, revalidator, cfg.Server.PublicURL),
		Blog:      blog.NewHandler(blogSvc),
		Contact:   contact.NewHandler(contactSvc, dispatcher, hub, admins),
		Itinerary: itinerary.NewHandler(itinerarySvc, dispatcher, hub, admins),
		Booking:   booking.NewHandler(bookingSvc, packageSvc, dispatcher, hub, admins),
		Auth:      auth.NewHandler(userSvc, resetSvc, sessions, dispatcher, resetTTL, cfg.Server.PublicURL),
		Profile:   profile.NewHandler(userSvc, packageSvc, revalidator),
		Pages:     pages.NewHandler(packageSvc, blogSvc, userSvc, contactSvc, itinerarySvc, bookingSvc),

		PackageActions: admin.NewPackageActions(packageSvc, revalidator),
		PostActions:    admin.NewPostActions(blogSvc, revalidator),
		Contacts:       admin.NewContactInbox(contactSvc),
		Itineraries:    admin.NewItineraryInbox(itinerarySvc),
		Bookings:       admin.NewBookingInbox(bookingSvc),
		Uploads:        admin.NewUploads(images),

		Hub:         hub,
		LiveOrigins: cfg.Server.CORSAllowedOrigins,
		Health:      []routes.Pinger{store, redisPinger{rc}},
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, h)

	// CORS → access control → router, wrapped in security headers and logging
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(sessions.AccessControl(router))

	handler := middleware.Logging(log)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info().Msg("stopping live hub")
		hub.Stop()
	})

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("pending emails dropped")
	}
	if err := rc.Close(); err != nil {
		log.Warn().Err(err).Msg("close redis")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("close mongo")
	}

	log.Info().Msg("server stopped cleanly")
}
