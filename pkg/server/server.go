package server

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KyleBrandon/irrigation-server/config"
	"github.com/KyleBrandon/irrigation-server/internal/clock"
	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/internal/mqtt"
	"github.com/KyleBrandon/irrigation-server/internal/sensor"
	"github.com/KyleBrandon/irrigation-server/pkg/server/events"
	"github.com/KyleBrandon/irrigation-server/pkg/server/health"
	"github.com/KyleBrandon/irrigation-server/pkg/server/moisture"
	"github.com/KyleBrandon/irrigation-server/pkg/server/monitor"
	"github.com/KyleBrandon/irrigation-server/pkg/server/notfound"
	"github.com/KyleBrandon/irrigation-server/pkg/server/settings"
	"github.com/KyleBrandon/irrigation-server/pkg/server/status"
	"github.com/KyleBrandon/irrigation-server/pkg/server/temperatures"
	"github.com/KyleBrandon/irrigation-server/pkg/server/watering"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"
	SHUTDOWN_TIMEOUT             = 10 * time.Second
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagMockSensor bool
	cmdLineFlagLogLevel   string
)

// EventStore is the event journal: PostgreSQL when DATABASE_URL is set,
// otherwise an in-memory ring.
type EventStore interface {
	monitor.MonitorStore
	events.EventStore
}

type ServerConfig struct {
	mux                *http.ServeMux
	mctx               *monitor.MonitorContext
	ServerPort         string
	DatabaseURL        string
	UseMockSensor      bool
	LogFileLocation    string
	ConfigFileLocation string
	MqttBroker         string
	MqttClientID       string
	ApiKey             string
	Logger             *slog.Logger
	LoggerLevel        *slog.LevelVar
	LogFile            *os.File
	Notifier           *notify.Notify
	Publisher          mqtt.Publisher

	Config         config.Config
	Sensors        sensor.Sensors
	Store          EventStore
	DBConnection   *sql.DB
	OriginPatterns []string
}

// init will read and initialize the global command line variables
func init() {
	// initialize the mock sensor commandline flag
	flag.BoolVar(&cmdLineFlagMockSensor, "use_mock_sensor", false, "Indicate if we should use a mock sensor for the server instance.")
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
}

// InitializeServer loads the configuration, opens the devices and the event
// journal, starts the control loop and registers every route.
func InitializeServer() (*ServerConfig, error) {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	sc, err := initializeServerConfig()
	if err != nil {
		return nil, err
	}

	settingsStore, err := irrigation.NewSettingsStore(sc.Config.Settings)
	if err != nil {
		sc.close()
		return nil, fmt.Errorf("invalid irrigation settings: %w", err)
	}

	mcfg := monitor.MonitorConfig{
		Clock:    clock.NewSystem(),
		Settings: settingsStore,
		Sensors:  sc.Sensors,
		Store:    sc.Store,
		Options: irrigation.Options{
			SuppressWateringWhileNotified: sc.Config.SuppressWateringWhileNotified,
		},
		TickInterval:      sc.Config.TickInterval(),
		HeartbeatInterval: sc.Config.HeartbeatInterval(),
	}

	// only assign non-nil values so the interfaces stay nil
	if sc.Notifier != nil {
		mcfg.Notifier = sc.Notifier
	}
	if sc.Publisher != nil {
		mcfg.Publisher = sc.Publisher
	}

	sc.mctx = monitor.InitializeMonitorContext(mcfg)
	sc.mux = http.NewServeMux()

	healthHandler := health.NewHandler(sc.LoggerLevel, sc.Logger, sc.ApiKey)
	healthHandler.RegisterRoutes(sc.mux)

	statusHandler := status.NewHandler(sc.mctx.Controller, sc.OriginPatterns)
	statusHandler.RegisterRoutes(sc.mux)

	settingsHandler := settings.NewHandler(sc.mctx.Controller, sc.ApiKey)
	settingsHandler.RegisterRoutes(sc.mux)

	wateringHandler := watering.NewHandler(sc.mctx.Controller, sc.Sensors, sc.ApiKey)
	wateringHandler.RegisterRoutes(sc.mux)

	moistureHandler := moisture.NewHandler(sc.mctx.Controller)
	moistureHandler.RegisterRoutes(sc.mux)

	eventsHandler := events.NewHandler(sc.Store)
	eventsHandler.RegisterRoutes(sc.mux)

	temperatureHandler := temperatures.NewHandler(sc.Sensors)
	temperatureHandler.RegisterRoutes(sc.mux)

	notfound.RegisterRoutes(sc.mux)

	return sc, nil
}

// RunServer listens until the process is signalled, then stops the control
// loop and releases the devices.
func (sc *ServerConfig) RunServer() {
	slog.Info(">>RunServer")
	defer slog.Info("<<RunServer")

	defer sc.close()

	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", sc.ServerPort),
		Handler: sc.mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "port", sc.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
	}

	sc.mctx.CancelAndWait()
}

// close releases everything initializeServerConfig opened.
func (sc *ServerConfig) close() {
	if sc.Publisher != nil {
		if err := sc.Publisher.Close(); err != nil {
			slog.Warn("failed to close the MQTT publisher", "error", err)
		}
	}

	if sc.Sensors != nil {
		if err := sc.Sensors.Close(); err != nil {
			slog.Error("failed to close the sensors", "error", err)
		}
	}

	if sc.DBConnection != nil {
		sc.DBConnection.Close()
	}

	if sc.LogFile != nil && sc.LogFile != os.Stderr {
		sc.LogFile.Close()
	}
}

func initializeServerConfig() (*ServerConfig, error) {
	slog.Info(">>initializeServerConfig")
	defer slog.Info("<<initializeServerConfig")

	sc := &ServerConfig{}

	// MUST BE FIRST
	if err := sc.readEnvironmentVariables(); err != nil {
		return nil, err
	}

	// configure slog
	if err := sc.configureLogger(); err != nil {
		return nil, err
	}

	// load the configuration file and environment settings
	cfg, err := config.LoadConfigSettings(sc.ConfigFileLocation)
	if err != nil {
		slog.Error("failed to load config file", "file", sc.ConfigFileLocation, "error", err)
		sc.close()
		return nil, err
	}

	sc.Config = cfg
	sc.OriginPatterns = cfg.OriginPatterns

	// load the sensor configuration
	sensors, err := sensor.NewSensorConfig(
		cfg.Devices,
		sc.UseMockSensor,
		cfg.MockMoisture)
	if err != nil {
		slog.Error("failed to initialize sensors", "error", err)
		sc.close()
		return nil, err
	}

	sc.Sensors = sensors

	if err := sc.openDatabase(); err != nil {
		sc.close()
		return nil, err
	}

	sc.connectPublisher()

	return sc, nil
}

func (sc *ServerConfig) readEnvironmentVariables() error {
	slog.Info(">>readEnvironmentVariables")
	defer slog.Info("<<readEnvironmentVariables")

	// load the environment
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	sc.DatabaseURL = os.Getenv("DATABASE_URL")

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	sc.MqttBroker = os.Getenv("MQTT_BROKER")
	sc.MqttClientID = os.Getenv("MQTT_CLIENT_ID")
	if len(sc.MqttClientID) == 0 {
		sc.MqttClientID = mqtt.DEFAULT_CLIENT_ID
	}

	sc.ApiKey = os.Getenv("API_KEY")
	if len(sc.ApiKey) == 0 {
		slog.Warn("API_KEY is not set, write routes are unprotected")
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioAuthToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFromPhone := os.Getenv("TWILIO_FROM_PHONE_NO")
	twilioToPhone := os.Getenv("TWILIO_TO_PHONE_NO")
	if len(twilioAccountSID) != 0 {
		slog.Info("Twilio account information present, configuring Notifier")

		twilioService, err := twilio.New(twilioAccountSID, twilioAuthToken, twilioFromPhone)
		if err != nil {
			return fmt.Errorf("failed to initialize Twilio service: %w", err)
		}

		twilioService.AddReceivers(twilioToPhone)

		notifier := notify.New()
		notifier.UseServices(twilioService)
		sc.Notifier = notifier
	}

	// mock sensor flag is a command line flag for debugging
	sc.UseMockSensor = cmdLineFlagMockSensor

	return nil
}

// configureLogger will initialize the slog to stderr and save the log level so it can be set via API.
func (sc *ServerConfig) configureLogger() error {
	slog.Info(">>configureLogger")
	defer slog.Info("<<configureLogger")

	// create a variable to store the current log level
	currentLevel := new(slog.LevelVar)

	// parse the log level from any passed in command line flag
	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		slog.Info("Save to log file", "file", sc.LogFileLocation)
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: currentLevel})

	logger := slog.New(fileHandler)

	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile

	return nil
}

// openDatabase connects the event journal to PostgreSQL, or falls back to
// memory when no DATABASE_URL is configured.
func (sc *ServerConfig) openDatabase() error {
	if len(sc.DatabaseURL) == 0 {
		slog.Warn("no database connection string is configured, events are kept in memory")
		sc.Store = database.NewMemoryStore(database.DEFAULT_MEMORY_CAPACITY)
		return nil
	}

	db, err := sql.Open("postgres", sc.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	sc.DBConnection = db

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		slog.Error("failed to create the events table", "error", err)
		return err
	}

	sc.Store = database.New(db)

	return nil
}

// connectPublisher mirrors events to MQTT when a broker is configured. A
// broker that cannot be reached only disables the mirror.
func (sc *ServerConfig) connectPublisher() {
	if len(sc.MqttBroker) == 0 {
		return
	}

	publisher, err := mqtt.NewRealPublisher(sc.MqttBroker, sc.MqttClientID)
	if err != nil {
		slog.Warn("failed to connect to the MQTT broker, events will not be published", "broker", sc.MqttBroker, "error", err)
		return
	}

	sc.Publisher = publisher
}
