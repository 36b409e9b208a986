package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	grpcapi "github.com/kb10uy/kdscan/pkg/api/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const version = "1.0.0"

var (
	serverAddr string
	collection string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flag.StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	flag.StringVar(&collection, "collection", "default", "collection to use")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	command := os.Args[1]

	switch command {
	case "insert":
		handleInsert(os.Args[2:])
	case "build":
		handleBuild(os.Args[2:])
	case "cluster":
		handleCluster(os.Args[2:])
	case "search":
		handleSearch(os.Args[2:])
	case "range":
		handleRange(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "version":
		fmt.Printf("kdscan-cli version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleInsert(args []string) {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	pointsStr := fs.String("points", "", "points as a JSON array of arrays, e.g. [[0,0],[1,1]] (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", collection, "collection")
	fs.Parse(args)

	if *pointsStr == "" {
		fmt.Println("Error: -points is required")
		fs.Usage()
		os.Exit(1)
	}

	var points [][]float64
	if err := json.Unmarshal([]byte(*pointsStr), &points); err != nil {
		fmt.Printf("Error parsing points: %v\n", err)
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Insert(ctx, &grpcapi.InsertRequest{Collection: collection, Points: points})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Inserted %d point(s), %d total in '%s'\n", resp.Inserted, resp.TotalCount, collection)
}

func handleBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	metric := fs.String("metric", "euclidean", "distance metric: euclidean, squared_euclidean, manhattan, chebyshev")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", collection, "collection")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Build(ctx, &grpcapi.BuildRequest{Collection: collection, Metric: *metric})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Built k-d tree over %d point(s) in '%s'\n", resp.Size, collection)
}

func handleCluster(args []string) {
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)
	epsilon := fs.Float64("epsilon", 0.5, "neighborhood radius")
	minItems := fs.Int("min-items", 4, "minimum core population")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", collection, "collection")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Cluster(ctx, &grpcapi.ClusterRequest{Collection: collection, Epsilon: *epsilon, MinItems: *minItems})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Labels: %v\n", resp.Labels)
	fmt.Printf("Clusters found: %d, noise points: %d\n", resp.ClusterCount, resp.NoiseCount)
}

func handleSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	queryStr := fs.String("query", "", "query point as a JSON array, e.g. [0.1,0.2] (required)")
	k := fs.Int("k", 1, "number of nearest neighbors to return")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", collection, "collection")
	fs.Parse(args)

	if *queryStr == "" {
		fmt.Println("Error: -query is required")
		fs.Usage()
		os.Exit(1)
	}

	var query []float64
	if err := json.Unmarshal([]byte(*queryStr), &query); err != nil {
		fmt.Printf("Error parsing query: %v\n", err)
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Search(ctx, &grpcapi.SearchRequest{Collection: collection, Query: query, K: *k})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	displaySearchResults(resp.Results)
}

func handleRange(args []string) {
	fs := flag.NewFlagSet("range", flag.ExitOnError)
	queryStr := fs.String("query", "", "query point as a JSON array (required)")
	epsilon := fs.Float64("epsilon", 0.5, "search radius")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", collection, "collection")
	fs.Parse(args)

	if *queryStr == "" {
		fmt.Println("Error: -query is required")
		fs.Usage()
		os.Exit(1)
	}

	var query []float64
	if err := json.Unmarshal([]byte(*queryStr), &query); err != nil {
		fmt.Printf("Error parsing query: %v\n", err)
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.RangeQuery(ctx, &grpcapi.RangeQueryRequest{Collection: collection, Query: query, Epsilon: *epsilon})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	displaySearchResults(resp.Results)
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.StringVar(&collection, "collection", "", "collection (omit for all)")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Stats(ctx, &grpcapi.StatsRequest{Collection: collection})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== kdscan Statistics ===")
	fmt.Printf("Uptime: %.0f seconds\n\n", resp.UptimeSeconds)
	for _, c := range resp.Collections {
		fmt.Printf("%s:\n", c.Name)
		fmt.Printf("  Points:        %d\n", c.PointCount)
		fmt.Printf("  Tree built:    %v\n", c.HasTree)
		fmt.Printf("  Clusters:      %d\n", c.ClusterCount)
		fmt.Printf("  Noise points:  %d\n", c.NoiseCount)
	}
}

func handleHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.HealthCheck(ctx, &grpcapi.HealthCheckRequest{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s\n", resp.Status)
	fmt.Printf("Uptime: %.0f seconds\n", resp.UptimeSeconds)

	if resp.Status != "SERVING" {
		os.Exit(1)
	}
}

func connectToServer() (grpcapi.ClusterServiceClient, *grpc.ClientConn) {
	conn, err := grpc.NewClient(serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpcapi.DialOption(),
	)
	if err != nil {
		fmt.Printf("Failed to connect to server at %s: %v\n", serverAddr, err)
		os.Exit(1)
	}

	return grpcapi.NewClusterServiceClient(conn), conn
}

func displaySearchResults(results []grpcapi.SearchResult) {
	fmt.Printf("Found %d result(s)\n\n", len(results))

	for i, r := range results {
		fmt.Printf("Result %d:\n", i+1)
		fmt.Printf("  Coords:   %v\n", r.Coords)
		fmt.Printf("  Distance: %.6f\n", r.Distance)
		fmt.Println()
	}
}

func showUsage() {
	fmt.Println(`kdscan CLI - client for the kdscan clustering gRPC server

Usage:
  kdscan-cli <command> [options]

Commands:
  insert    Insert points into a collection
  build     Build the k-d tree over a collection's points
  cluster   Run DBSCAN over a collection
  search    Find the nearest neighbor(s) of a query point
  range     Find all points within a radius of a query point
  stats     Get collection statistics
  health    Check server health
  version   Show version
  help      Show this help message

Options (given after the command):
  -server ADDRESS      gRPC server address (default: localhost:50051)
  -collection NAME     Collection to use (default: default; stats: all
                       collections; not taken by health)

Each request times out after 30s.

Examples:

  # Insert points
  kdscan-cli insert -points '[[0,0],[1,1],[5,5]]'

  # Build the tree
  kdscan-cli build -metric euclidean

  # Run DBSCAN
  kdscan-cli cluster -epsilon 0.5 -min-items 4

  # Find the nearest neighbor
  kdscan-cli search -query '[0.1,0.2]'

  # Find the 5 nearest neighbors
  kdscan-cli search -query '[0.1,0.2]' -k 5

  # Find all points within radius 1.0
  kdscan-cli range -query '[0.1,0.2]' -epsilon 1.0

  # Get statistics
  kdscan-cli stats

  # Check server health
  kdscan-cli health

  # Use a custom server and collection
  kdscan-cli search -server my-server:50051 -collection sensors -query '[0.1,0.2]'`)
}
