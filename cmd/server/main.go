package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rockduel/config"
	"rockduel/internal/service"
	"rockduel/internal/store"
	"rockduel/internal/transport/rest"
	"rockduel/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	gw, err := store.NewFileGateway(cfg.StorePath())
	if err != nil {
		log.Fatal("init data dir:", err)
	}
	playerStore, err := store.Open(gw)
	if err != nil {
		log.Fatal("open player store:", err)
	}
	log.Printf("player store at %s", cfg.StorePath())

	hub := ws.NewHub()
	orch := service.NewOrchestrator(playerStore, hub)
	orch.SetSessionChecker(hub.IsConnected)

	authSvc := service.NewAuthService(cfg.JWTSecret)
	shopSvc := service.NewShopService(playerStore)

	wsHandler := ws.NewHandler(hub, orch, authSvc, shopSvc, cfg.Origins())
	router := rest.NewRouter(&rest.Container{
		Store:          playerStore,
		WSHandler:      wsHandler,
		AllowedOrigins: cfg.Origins(),
	})

	// Background loops: the match scheduler and the store flusher.
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		orch.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		playerStore.RunFlusher(ctx)
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}
	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("server shutdown:", err)
	}

	// Stop the loops; the flusher writes a final snapshot on its way out.
	cancel()
	wg.Wait()
	log.Println("server exited")
}
