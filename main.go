package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"meterlog/internal/config"
	"meterlog/internal/db"
	"meterlog/internal/http/handlers"
	appmw "meterlog/internal/http/middleware"
	"meterlog/internal/meter"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.EnsureBootstrapUser(sqlDB, cfg); err != nil {
		log.Fatalf("failed to ensure bootstrap user: %v", err)
	}

	db.StartReconcileWorker(sqlDB, cfg.ReconcileInterval)

	handlers.InitPrometheusMetrics()

	store := db.NewReadingStore(sqlDB)
	svc := meter.NewService(store,
		meter.WithAllowZeroDelta(cfg.AllowZeroDelta),
		meter.WithAggregates(cfg.MaintainAggregates),
	)

	r := router.New()
	auth := appmw.TokenAuth()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", handlers.MetricsHandler())

	r.POST("/login", handlers.Login(sqlDB))
	r.POST("/logout", handlers.Logout())

	r.GET("/username", auth(handlers.Username()))

	r.GET("/readings", auth(handlers.ListReadings(svc)))
	r.POST("/readings", auth(handlers.CreateReading(svc)))
	r.GET("/readings/summary", auth(handlers.ReadingsSummary(svc)))
	r.GET("/readings/{id}", auth(handlers.ReadingDetail(svc)))
	r.DELETE("/readings/{id}", auth(handlers.DeleteReading(svc)))

	r.GET("/latest-kwh", auth(handlers.LatestKWh(svc)))
	r.GET("/report", auth(handlers.YearReport(svc)))
	r.GET("/accounts/{username}/summary", auth(handlers.AccountSummary(svc)))

	handler := handlers.RequestLogger(r.Handler)

	log.Printf("meterlog listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
