package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	grpcserver "github.com/kb10uy/kdscan/pkg/api/grpc"
	"github.com/kb10uy/kdscan/pkg/api/rest"
	"github.com/kb10uy/kdscan/pkg/api/rest/middleware"
	"github.com/kb10uy/kdscan/pkg/config"
	"github.com/kb10uy/kdscan/pkg/observability"
)

var (
	version = "1.0.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version and exit")
		showHelp    = flag.Bool("help", false, "show help and exit")
		configFile  = flag.String("config", "", "path to YAML configuration file (optional)")
		host        = flag.String("host", "", "gRPC server host (overrides config/env)")
		port        = flag.Int("port", 0, "gRPC server port (overrides config/env)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("kdscan server v%s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		showUsage()
		os.Exit(0)
	}

	printBanner()

	cfg := loadConfig(*configFile)
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := observability.NewDefaultLogger()
	metrics := observability.NewMetrics()

	log.Println("Initializing kdscan server...")
	grpcServer, err := grpcserver.NewServer(cfg, logger, metrics)
	if err != nil {
		log.Fatalf("Failed to create gRPC server: %v", err)
	}

	printStartupInfo(cfg)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("Starting gRPC server...")
		if err := grpcServer.Start(); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// The REST gateway is wired directly to the gRPC engine's Go value
	// rather than dialing it over the network, so it can start as soon
	// as grpcServer exists -- no need to wait for its listener.
	var restServer *rest.Server
	if cfg.REST.Enabled {
		restConfig := rest.Config{
			Host:        cfg.REST.Host,
			Port:        cfg.REST.Port,
			CORSEnabled: cfg.REST.CORSEnabled,
			CORSOrigins: cfg.REST.CORSOrigins,
			Auth: middleware.AuthConfig{
				Enabled:     cfg.REST.AuthEnabled,
				JWTSecret:   cfg.REST.JWTSecret,
				PublicPaths: cfg.REST.PublicPaths,
				AdminPaths:  cfg.REST.AdminPaths,
			},
			RateLimit: middleware.RateLimitConfig{
				Enabled:        cfg.REST.RateLimitEnabled,
				RequestsPerSec: cfg.REST.RateLimitPerSec,
				Burst:          cfg.REST.RateLimitBurst,
				PerIP:          cfg.REST.RateLimitPerIP,
				PerUser:        cfg.REST.RateLimitPerUser,
				GlobalLimit:    cfg.REST.RateLimitGlobal,
			},
		}

		restServer, err = rest.NewServer(restConfig, grpcServer)
		if err != nil {
			log.Fatalf("Failed to create REST server: %v", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Starting REST API server...")
			if err := restServer.Start(); err != nil {
				errChan <- fmt.Errorf("REST server error: %w", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	log.Println("Servers are ready. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if restServer != nil {
		if err := restServer.Stop(ctx); err != nil {
			log.Printf("Error stopping REST server: %v", err)
		}
	}

	if err := grpcServer.Stop(); err != nil {
		log.Printf("Error stopping gRPC server: %v", err)
	}

	wg.Wait()
	log.Println("Servers stopped. Goodbye!")
}

func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		cfg, err := config.LoadFromYAML(configFile)
		if err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
		return cfg
	}

	return config.LoadFromEnv()
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                                                           ║
║   _        _                             _                ║
║  | | _____| |___  ___ __ _ _ __      ___ | |_ _ __ ___  ___ ║
║  | |/ / _  / __/ __/ _  |  _ \    / _ \| __|  __/ _ \/ _ \║
║  |   <  (_| \__ \ (_| (_| | | | |  |  __/| |_| | |  __/  __/║
║  |_|\_\__,_|___/\___\__,_|_| |_|   \___| \__|_|  \___|\___|║
║                                                           ║
║   k-d tree nearest-neighbor search and DBSCAN clustering   ║
║                                                           ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("Version: %s (commit: %s)\n\n", version, commit)
}

func printStartupInfo(cfg *config.Config) {
	fmt.Println("\n╔════════════════════════════════════════════════════════╗")
	fmt.Println("║            gRPC Server Configuration                   ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Address:          %-35s ║\n", cfg.Server.Address())
	fmt.Printf("║ Max Connections:  %-35d ║\n", cfg.Server.MaxConnections)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║            REST API Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.REST.Enabled)
	if cfg.REST.Enabled {
		fmt.Printf("║ Address:          %-35s ║\n", cfg.REST.Address())
		fmt.Printf("║ Auth Enabled:     %-35v ║\n", cfg.REST.AuthEnabled)
		fmt.Printf("║ CORS Enabled:     %-35v ║\n", cfg.REST.CORSEnabled)
		fmt.Printf("║ Rate Limiting:    %-35v ║\n", cfg.REST.RateLimitEnabled)
		if cfg.REST.RateLimitEnabled {
			fmt.Printf("║ Rate:             %-35s ║\n", fmt.Sprintf("%.1f req/s (burst: %d)", cfg.REST.RateLimitPerSec, cfg.REST.RateLimitBurst))
		}
		fmt.Printf("║ API Docs:         %-35s ║\n", fmt.Sprintf("http://%s/docs", cfg.REST.Address()))
	}
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Clustering Configuration                 ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Metric:           %-35s ║\n", cfg.Cluster.Metric)
	fmt.Printf("║ Epsilon:          %-35v ║\n", cfg.Cluster.Epsilon)
	fmt.Printf("║ MinItems:         %-35d ║\n", cfg.Cluster.MinItems)
	fmt.Printf("║ Dimensions:       %-35d ║\n", cfg.Cluster.Dimensions)
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Println("║               Cache Configuration                      ║")
	fmt.Println("╠════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Enabled:          %-35v ║\n", cfg.Cache.Enabled)
	fmt.Printf("║ Capacity:         %-35d ║\n", cfg.Cache.Capacity)
	fmt.Printf("║ TTL:              %-35s ║\n", cfg.Cache.TTL)
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
}

func showUsage() {
	fmt.Println("kdscan server - k-d tree nearest-neighbor search and DBSCAN clustering")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kdscan-server [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -help             Show this help message")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -config PATH      Path to configuration file (YAML)")
	fmt.Println("  -host HOST        gRPC server host (default: 0.0.0.0)")
	fmt.Println("  -port PORT        gRPC server port (default: 50051)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  KDSCAN_HOST                gRPC server host")
	fmt.Println("  KDSCAN_PORT                gRPC server port")
	fmt.Println("  KDSCAN_MAX_CONNECTIONS     Max concurrent gRPC streams")
	fmt.Println("  KDSCAN_REQUEST_TIMEOUT     Request timeout (e.g., 30s)")
	fmt.Println("  KDSCAN_EPSILON             Default DBSCAN neighborhood radius")
	fmt.Println("  KDSCAN_MIN_ITEMS           Default DBSCAN minimum core population")
	fmt.Println("  KDSCAN_DIMENSIONS          Expected point dimensionality")
	fmt.Println("  KDSCAN_METRIC              Distance metric (euclidean, squared_euclidean, manhattan, chebyshev)")
	fmt.Println("  KDSCAN_CACHE_ENABLED       Enable query cache (true/false)")
	fmt.Println("  KDSCAN_CACHE_CAPACITY      Cache capacity")
	fmt.Println("  KDSCAN_CACHE_TTL           Cache TTL (e.g., 5m)")
	fmt.Println("  KDSCAN_REST_ENABLED        Enable REST gateway (true/false)")
	fmt.Println("  KDSCAN_JWT_SECRET          JWT signing secret (enables REST auth)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Start with default configuration")
	fmt.Println("  kdscan-server")
	fmt.Println()
	fmt.Println("  # Start on a custom port")
	fmt.Println("  kdscan-server -port 8080")
	fmt.Println()
	fmt.Println("  # Start with environment variables")
	fmt.Println("  KDSCAN_PORT=8080 KDSCAN_EPSILON=0.25 kdscan-server")
	fmt.Println()
	fmt.Println("  # Start with a config file")
	fmt.Println("  kdscan-server -config config.yaml")
	fmt.Println()
}
