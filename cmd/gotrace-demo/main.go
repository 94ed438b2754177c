// Command gotrace-demo is a minimal embedder of the gotrace library: it
// initializes the Registry from environment/flag configuration, runs
// either test-mode trace generation or simply idles, and drains the
// pipeline on SIGINT/SIGTERM.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/shortontech/gotrace"
)

// config mirrors the GOTRACE_* environment variables this binary reads;
// flags (below) take precedence when set.
type config struct {
	Endpoint  string `koanf:"GOTRACE_ENDPOINT"`
	BatchSize int    `koanf:"GOTRACE_BATCH_SIZE"`
	DBName    string `koanf:"GOTRACE_DB_NAME"`
	TestMode  bool   `koanf:"GOTRACE_TEST_MODE"`
}

func loadConfig() config {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}
	return cfg
}

func main() {
	var (
		endpoint  = flag.String("endpoint", "", "postgres endpoint, overrides GOTRACE_ENDPOINT")
		batchSize = flag.Int("batch-size", 0, "writer batch size, overrides GOTRACE_BATCH_SIZE (0 = library default)")
		dbName    = flag.String("db-name", "", "database name override, overrides GOTRACE_DB_NAME")
		testMode  = flag.Bool("test-mode", false, "generate a sample nested trace on startup")
	)
	flag.Parse()

	cfg := loadConfig()
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	if *batchSize != 0 {
		cfg.BatchSize = *batchSize
	}
	if *dbName != "" {
		cfg.DBName = *dbName
	}
	if *testMode {
		cfg.TestMode = true
	}

	if cfg.Endpoint == "" {
		log.Fatal("no endpoint configured: set GOTRACE_ENDPOINT or pass -endpoint")
	}

	dbname, err := gotrace.Initialize(cfg.Endpoint, cfg.BatchSize, cfg.DBName)
	if err != nil {
		log.Fatalf("gotrace.Initialize: %v", err)
	}
	log.Printf("gotrace initialized against database %q", dbname)

	if cfg.TestMode {
		go func() {
			time.Sleep(500 * time.Millisecond)
			runTestMode()
		}()
	}

	waitForShutdown()
}

func waitForShutdown() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	gotrace.Shutdown()
	log.Println("shutdown complete")
}
