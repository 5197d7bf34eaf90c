package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/storage"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/viewflow"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the workshop feedback server"
	commandLongDescription      = "Launch the workshop feedback collection HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logFieldAddress             = "addr"

	flagNameApplicationAddress = "app-addr"
	flagNameDatabaseDriver     = "db-driver"
	flagNameDatabaseDataSource = "db-dsn"
	flagNameAdminPassword      = "admin-password"
	flagNameSessionSecret      = "session-secret"
	flagNameSessionTTLMinutes  = "session-ttl-minutes"
	flagNameGestureKey         = "gesture-key"
	flagNameGestureLength      = "gesture-length"

	flagUsageApplicationAddress = "address for the HTTP server to listen on"
	flagUsageDatabaseDriver     = "database driver (sqlite or postgres)"
	flagUsageDatabaseDataSource = "database connection string"
	flagUsageAdminPassword      = "shared password granting admin dashboard access"
	flagUsageSessionSecret      = "secret used to sign admin session cookies"
	flagUsageSessionTTLMinutes  = "admin session lifetime in minutes"
	flagUsageGestureKey         = "keystroke that reveals the admin login"
	flagUsageGestureLength      = "consecutive presses required to reveal the admin login"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyAdminPassword      = "ADMIN_PASSWORD"
	environmentKeySessionSecret      = "SESSION_SECRET"
	environmentKeySessionTTLMinutes  = "SESSION_TTL_MINUTES"
	environmentKeyGestureKey         = "GESTURE_KEY"
	environmentKeyGestureLength      = "GESTURE_LENGTH"

	defaultApplicationAddress = ":8080"
	defaultDatabaseDriver     = storage.DriverNameSQLite
	defaultSessionTTLMinutes  = 12 * 60
	defaultGestureKey         = string(viewflow.DefaultGestureKey)
	defaultGestureLength      = viewflow.DefaultGestureLength

	loggerContextOpenDatabase = "open_db"
	loggerContextAutoMigrate  = "migrate"
	loggerContextServer       = "server"
	readHeaderTimeoutSeconds  = 5

	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
	invalidGestureKeyMessage      = "gesture key must be a single character"
)

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	AdminPassword          string
	SessionSecret          string
	SessionTTL             time.Duration
	GestureKey             rune
	GestureLength          int
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.SetDefault(environmentKeyApplicationAddress, defaultApplicationAddress)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDriver, defaultDatabaseDriver)
	application.configurationLoader.SetDefault(environmentKeyDatabaseDataSource, "")
	application.configurationLoader.SetDefault(environmentKeyAdminPassword, "")
	application.configurationLoader.SetDefault(environmentKeySessionSecret, "")
	application.configurationLoader.SetDefault(environmentKeySessionTTLMinutes, defaultSessionTTLMinutes)
	application.configurationLoader.SetDefault(environmentKeyGestureKey, defaultGestureKey)
	application.configurationLoader.SetDefault(environmentKeyGestureLength, defaultGestureLength)
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	commandFlags.String(flagNameApplicationAddress, defaultApplicationAddress, flagUsageApplicationAddress)
	commandFlags.String(flagNameDatabaseDriver, defaultDatabaseDriver, flagUsageDatabaseDriver)
	commandFlags.String(flagNameDatabaseDataSource, "", flagUsageDatabaseDataSource)
	commandFlags.String(flagNameAdminPassword, "", flagUsageAdminPassword)
	commandFlags.String(flagNameSessionSecret, "", flagUsageSessionSecret)
	commandFlags.Int(flagNameSessionTTLMinutes, defaultSessionTTLMinutes, flagUsageSessionTTLMinutes)
	commandFlags.String(flagNameGestureKey, defaultGestureKey, flagUsageGestureKey)
	commandFlags.Int(flagNameGestureLength, defaultGestureLength, flagUsageGestureLength)

	flagBindings := []struct {
		environmentKey string
		flagName       string
	}{
		{environmentKeyApplicationAddress, flagNameApplicationAddress},
		{environmentKeyDatabaseDriver, flagNameDatabaseDriver},
		{environmentKeyDatabaseDataSource, flagNameDatabaseDataSource},
		{environmentKeyAdminPassword, flagNameAdminPassword},
		{environmentKeySessionSecret, flagNameSessionSecret},
		{environmentKeySessionTTLMinutes, flagNameSessionTTLMinutes},
		{environmentKeyGestureKey, flagNameGestureKey},
		{environmentKeyGestureLength, flagNameGestureLength},
	}

	for _, binding := range flagBindings {
		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDataSource); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameAdminPassword); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameSessionSecret); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadServerConfig() (ServerConfig, error) {
	gestureKeyText := strings.TrimSpace(application.configurationLoader.GetString(environmentKeyGestureKey))
	gestureKeyRunes := []rune(gestureKeyText)
	if len(gestureKeyRunes) != 1 {
		return ServerConfig{}, errors.New(invalidGestureKeyMessage)
	}

	return ServerConfig{
		ApplicationAddress:     application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		AdminPassword:          application.configurationLoader.GetString(environmentKeyAdminPassword),
		SessionSecret:          application.configurationLoader.GetString(environmentKeySessionSecret),
		SessionTTL:             time.Duration(application.configurationLoader.GetInt(environmentKeySessionTTLMinutes)) * time.Minute,
		GestureKey:             gestureKeyRunes[0],
		GestureLength:          application.configurationLoader.GetInt(environmentKeyGestureLength),
	}, nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig, configErr := application.loadServerConfig()
	if configErr != nil {
		return configErr
	}

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	router := buildRouter(database, logger, serverConfig)

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSource)
	}

	if configuration.AdminPassword == "" {
		missingParameters = append(missingParameters, flagNameAdminPassword)
	}

	if configuration.SessionSecret == "" {
		missingParameters = append(missingParameters, flagNameSessionSecret)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
