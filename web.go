package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const httpTimeout = 10 * time.Second

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveHealthCheck() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	}
}

func serveVersion(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("gitgameshow v" + releaseVersion + "\n")); err != nil {
			log.Warn().Err(err).Str("remote", realIP(r)).Msg("version write failed")
		}
	}
}

// serveJoinPage shows the invite link and a QR code so players on the same
// network can scan in. The password is part of the link; the page is the
// invite.
func serveJoinPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		host := r.Host
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		link := cfg.joinLink(host)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		var page strings.Builder
		page.WriteString(`<!DOCTYPE html><html lang="en"><head><title>Git Game Show</title>`)
		page.WriteString(`<style>body{font-family:monospace;text-align:center;margin-top:4rem;}</style></head><body>`)
		page.WriteString(`<h1>Git Game Show</h1>`)
		page.WriteString(fmt.Sprintf(`<p>Join with: <code>%s</code></p>`, link))
		page.WriteString(`<p><img src="/join/qr" alt="join QR code" width="320" height="320"></p>`)
		page.WriteString(`</body></html>`)

		if _, err := fmt.Fprint(w, page.String()); err != nil {
			log.Warn().Err(err).Str("remote", realIP(r)).Msg("join page write failed")
		}
	}
}

func serveJoinQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		host := r.Host
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}

		const qrSize = 320
		png, err := qrcode.Encode(cfg.joinLink(host), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// serveWeb runs the HTTP surface: the websocket endpoint plus the small
// operational routes. It blocks until ctx is cancelled.
func serveWeb(ctx context.Context, cfg *Config, gs *GameServer) error {
	mux := httprouter.New()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       httpTimeout,
		ReadHeaderTimeout: httpTimeout,
		// No WriteTimeout: websocket connections outlive any sane value.
	}

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		log.Error().Any("panic", v).Str("remote", realIP(r)).Msg("handler panic")
		w.WriteHeader(http.StatusInternalServerError)
	}

	mux.GET("/ws", gs.hub.ServeWS())
	mux.GET("/healthz", serveHealthCheck())
	mux.GET("/version", serveVersion(cfg))
	mux.GET("/join", serveJoinPage(cfg))
	mux.GET("/join/qr", serveJoinQR(cfg))

	if cfg.profile {
		registerProfileHandlers(mux)
	}

	go func() {
		log.Info().Str("addr", fmt.Sprintf("%s://%s/", cfg.scheme(), srv.Addr)).Msg("listening")

		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return nil
}
