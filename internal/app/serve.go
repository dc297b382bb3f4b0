package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Pluto731/Translation-tools/internal/cli"
	"github.com/Pluto731/Translation-tools/internal/httpapi"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	addr := fs.String("addr", "", "Listen address (default HTTP_ADDR)")
	maxUpload := fs.Int64("max-upload-bytes", 20<<20, "Largest accepted document upload")
	readTimeout := fs.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 10*time.Minute, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		return 2
	}
	if *maxUpload <= 0 {
		fmt.Fprintln(os.Stderr, "--max-upload-bytes must be > 0")
		return 2
	}

	rt, err := bootstrap(envLoader, historyOptional)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	listenAddr := strings.TrimSpace(*addr)
	if listenAddr == "" {
		listenAddr = rt.cfg.HTTPAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	deps := httpapi.Deps{
		Engines:    rt.engines,
		Translator: rt.service,
		Documents:  rt.files,
		Settings:   rt,
	}
	if rt.history != nil {
		deps.History = rt.history
	}

	srv := httpapi.NewServer(deps, rt.logger, httpapi.Options{
		Addr:            listenAddr,
		AllowedOrigins:  rt.cfg.CORSAllowedOriginsList(),
		MaxUploadBytes:  *maxUpload,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
	})

	if err := srv.Start(ctx); err != nil {
		rt.logger.Error().Err(err).Str("addr", listenAddr).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
