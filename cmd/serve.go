package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JerryLinyx/newsdigest/controllers"
	"github.com/JerryLinyx/newsdigest/router"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard and JSON API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	newsCtrl := controllers.NewNewsController(a.aggregator, cfg.Categories, a.provider, a.envelopeCache())
	newsCtrl.SetRefreshInterval(cfg.Redis.RefreshInterval)

	deps := router.Deps{
		Title:           cfg.App.Name,
		FrontendOrigins: cfg.App.FrontendOrigins,
		JWTSecret:       cfg.Auth.JWTSecret,
		Health:          controllers.Health(cfg.App.Name, a.healthChecks()),
		News:            newsCtrl,
		ArchiveEnabled:  a.archive != nil,
	}
	if cfg.AuthEnabled() {
		deps.Auth, err = controllers.NewAuthController(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		notifiers, err := a.notifiers(nil)
		if err != nil {
			return err
		}
		var runs controllers.RunStore
		if a.archive != nil {
			runs = a.archive
		}
		deps.Digest = controllers.NewDigestController(a.digestService(notifiers), runs)
	} else {
		log.Println("auth not configured; digest endpoints disabled")
	}

	r, err := router.InitRouter(deps)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:    cfg.App.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Println("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}
