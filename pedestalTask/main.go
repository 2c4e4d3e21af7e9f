package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	dqm "github.com/next-exp/ecal_dqm/pkg"
)

var configuration dqm.Configuration

var (
	logger         = dqm.NewSlogLogger(os.Stdout, os.Stderr)
	VerbosityLevel int
	DiscardErrors  bool
)

func main() {
	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = dqm.LoadConfiguration(*configFilename)
	if err != nil {
		return fmt.Errorf("Error reading configuration file: %w", err)
	}
	dqm.SetConfiguration(configuration)
	dqm.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	geometry, runGeometry := newGeometry()

	task, err := dqm.NewTask(configuration.Task, configuration.TaskParameters(), geometry)
	if err != nil {
		return fmt.Errorf("Error creating task %s: %w", configuration.Task, err)
	}
	task.BookMEs()

	sessionID := uuid.NewString()
	logger.Info(fmt.Sprintf("Monitoring session %s, task %s", sessionID, task.Name()), "main")

	monitor := &Monitor{Task: task, Geometry: runGeometry}
	if configuration.FileOut != "" {
		monitor.Writer = dqm.NewWriter(configuration.FileOut, sessionID)
		defer func() {
			if err := monitor.Writer.Close(); err != nil {
				logger.Error(err.Error())
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if configuration.MetricsAddr != "" {
		monitor.Publisher = dqm.NewMetricsPublisher()
		server := startMetricsServer(configuration.MetricsAddr, monitor.Publisher)
		defer server.Shutdown(context.Background())
	}

	if configuration.WatchDir != "" {
		// Files are processed one at a time on the watcher goroutine.
		return dqm.WatchRunFiles(ctx, configuration.WatchDir, func(path string) {
			if err := monitor.processFile(ctx, path); err != nil {
				logger.Error(err.Error())
			}
		})
	}

	if err := monitor.processFile(ctx, configuration.FileIn); err != nil {
		return err
	}
	message := fmt.Sprintf("Events analyzed: %d, in pedestal mode: %d", monitor.Events, monitor.Accepted)
	logger.Info(message, "main")
	return nil
}

// newGeometry returns the task geometry. Unless no_db is set, channel maps
// are read from the database for the run of each processed file.
func newGeometry() (dqm.Geometry, *dqm.RunGeometry) {
	if configuration.NoDB {
		return dqm.StaticGeometry{}, nil
	}
	g := dqm.NewRunGeometry(loadChannelMap)
	return g, g
}

func loadChannelMap(runNumber int) (*dqm.DBGeometry, error) {
	dbConn, err := dqm.ConnectToDatabase(configuration.DBDriver, configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connection to database: %w", err)
	}
	defer dbConn.Close()

	return dqm.LoadChannelMap(dbConn, runNumber)
}

func startMetricsServer(addr string, publisher *dqm.MetricsPublisher) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", publisher)
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("metrics server: %v", err))
		}
	}()
	logger.Info(fmt.Sprintf("Serving metrics on %s/metrics", addr), "main")
	return server
}
