package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitdocsync/internal/config"
	"gitdocsync/internal/db"
	"gitdocsync/internal/docstore"
	"gitdocsync/internal/filestore"
	"gitdocsync/internal/handler"
	"gitdocsync/internal/job"
	"gitdocsync/internal/middleware"
	"gitdocsync/internal/pkg/logutil"
	"gitdocsync/internal/repo"
	"gitdocsync/internal/schedule"
)

// Run wires the document store, handlers, and maintenance jobs, then
// serves until interrupted.
func Run(cfg *config.Config) error {
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	logutil.L().Info("starting bridge server",
		zap.Int("port", cfg.Port),
		zap.String("doc_store", cfg.DocStore),
	)

	engine := buildEngine(cfg, store)

	scheduler := schedule.NewCronScheduler()
	ttl := time.Duration(cfg.CheckoutTTLMinutes) * time.Minute
	if err := scheduler.AddJob(job.NewCheckoutReleaseJob(store, ttl), "*/10 * * * *"); err != nil {
		return fmt.Errorf("schedule checkout release: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: engine,
	}
	errCh := make(chan error, 1)
	go func() {
		logutil.L().Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logutil.L().Info("server stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildEngine(cfg *config.Config, store docstore.Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		gzip.Gzip(gzip.DefaultCompression),
	)
	authed := engine.Group("/", middleware.BasicAuth(cfg.Users))
	handler.RegisterRoutes(authed, handler.RouterDeps{
		Push:     handler.NewPushHandler(store, cfg.TempDir),
		Show:     handler.NewShowHandler(store),
		Pull:     handler.NewPullHandler(store),
		TranxNum: cfg.TranxNum,
	})
	return engine
}

func buildStore(cfg *config.Config) (docstore.Store, error) {
	switch cfg.DocStore {
	case "memory":
		return docstore.NewMemoryStore(), nil
	case "postgres":
		conn, err := db.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		if err := db.ApplyMigrations(conn); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		blobs, err := filestore.New(cfg.FileStore)
		if err != nil {
			return nil, fmt.Errorf("init file store: %w", err)
		}
		return docstore.NewSQLStore(
			repo.NewDocumentRepo(conn),
			repo.NewVersionRepo(conn),
			repo.NewCheckoutRepo(conn),
			blobs,
		)
	default:
		return nil, fmt.Errorf("unsupported doc store: %s", cfg.DocStore)
	}
}
