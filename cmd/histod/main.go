package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/adminrpc"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/journal"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/metrics"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/replay"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/session"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/setup"
)

// #region main
func main() {
	dbPath := flag.String("db", envOr("HISTO_DB", "histogrammer.db"), "run journal path (empty disables the journal)")
	adminAddr := flag.String("admin", envOr("HISTO_ADMIN_ADDR", "localhost:50061"), "gRPC admin listen address")
	metricsAddr := flag.String("metrics", envOr("HISTO_METRICS_ADDR", "localhost:9109"), "metrics listen address (empty disables)")
	setupPath := flag.String("setup", envOr("HISTO_SETUP", ""), "setup YAML applied at startup")
	eventsPath := flag.String("events", "", "record file to analyze after setup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *journal.Store
	if *dbPath != "" {
		var err error
		store, err = journal.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer store.Close()
	}

	m := metrics.New()
	cfg := session.DefaultConfig()
	sess, err := session.New(cfg, store, m)
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("finish run: %v", err)
		}
	}()

	if *setupPath != "" {
		f, err := setup.Load(*setupPath)
		if err != nil {
			log.Fatalf("setup: %v", err)
		}
		if err := f.Apply(sess); err != nil {
			log.Fatalf("setup: %v", err)
		}
		log.Printf("applied setup %s: %d parameters, %d conditions, %d spectra",
			*setupPath, len(f.Parameters), len(f.Conditions), len(f.Spectra))
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: metricsMux(m), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	lis, err := net.Listen("tcp", *adminAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *adminAddr, err)
	}
	gs := grpc.NewServer(grpc.UnaryInterceptor(adminrpc.MetricsInterceptor(m)))
	adminrpc.Register(gs, adminrpc.NewServer(sess))
	go func() {
		if err := gs.Serve(lis); err != nil {
			log.Printf("admin server: %v", err)
		}
	}()
	defer gs.GracefulStop()

	fmt.Println("Histogrammer ready.")
	fmt.Printf("  Run: %s | Admin: %s | Metrics: %s | Journal: %s\n", sess.RunID(), *adminAddr, *metricsAddr, *dbPath)

	if *eventsPath != "" {
		if err := analyze(ctx, sess, *eventsPath); err != nil {
			log.Printf("analyze %s: %v", *eventsPath, err)
		}
	}

	<-ctx.Done()
	log.Println("shutting down")
}

// #endregion main

// #region helpers
func analyze(ctx context.Context, sess *session.Session, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	sum, err := replay.Replay(ctx, f, sess)
	log.Printf("analyzed %d events (%d spectrum increments, %d unknown records) in %s",
		sum.Events, sum.Accepted, sum.Unknown, time.Since(start).Round(time.Millisecond))
	return err
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
