// Package web gin server
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/laisky-notion-blog/library/log"
)

const shutdownTimeout = 10 * time.Second

// Registrar mounts a group of routes
type Registrar interface {
	Register(r gin.IRouter)
}

// NewEngine builds the gin engine with the shared middlewares and every registrar's routes.
//
// allowedOrigins are host suffixes, "laisky.com" allows laisky.com and all its subdomains.
func NewEngine(allowedOrigins []string, registrars ...Registrar) *gin.Engine {
	server := gin.New()
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(log.Logger.Level().String()),
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		allowCORS(allowedOrigins),
	)

	status := newStatusHandler()
	server.GET("/health", status)
	server.HEAD("/health", status)
	server.OPTIONS("/health", status)

	for _, r := range registrars {
		r.Register(server)
	}

	return server
}

// RunServer serves engine on addr until ctx is done
func RunServer(ctx context.Context, addr string, engine *gin.Engine) error {
	if err := gmw.EnableMetric(engine); err != nil {
		return errors.Wrap(err, "enable metric server")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server exit")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}

	log.Logger.Info("http server stopped")
	return nil
}

// newStatusHandler answers liveness probes
func newStatusHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Allow", "GET, HEAD, OPTIONS")
		if ctx.Request.Method != http.MethodGet {
			ctx.Status(http.StatusOK)
			return
		}

		ctx.String(http.StatusOK, "ok")
	}
}

func normalizeOrigins(suffixes []string) []string {
	result := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			result = append(result, s)
		}
	}

	return result
}

func originAllowed(host string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}

	return false
}

func allowCORS(allowedOrigins []string) gin.HandlerFunc {
	suffixes := normalizeOrigins(allowedOrigins)

	return func(ctx *gin.Context) {
		origin := strings.TrimSpace(ctx.Request.Header.Get("Origin"))
		allowedOrigin := ""

		if origin != "" {
			parsedOriginURL, err := url.Parse(origin)
			if err == nil {
				host := strings.ToLower(parsedOriginURL.Hostname())
				if host != "" && originAllowed(host, suffixes) {
					allowedOrigin = origin
				}
			}
		}

		if allowedOrigin != "" {
			ctx.Header("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With")
			ctx.Header("Access-Control-Max-Age", "86400") // 24 hours
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}
