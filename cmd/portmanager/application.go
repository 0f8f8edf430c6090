package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/DataDog/datadog-go/statsd"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gorilla/mux"
	"github.com/hightouchio/portmanager/api"
	"github.com/hightouchio/portmanager/conncheck"
	"github.com/hightouchio/portmanager/keystore"
	keystoreGCS "github.com/hightouchio/portmanager/keystore/gcs"
	keystoreInMemory "github.com/hightouchio/portmanager/keystore/inmemory"
	keystorePostgres "github.com/hightouchio/portmanager/keystore/postgres"
	keystoreS3 "github.com/hightouchio/portmanager/keystore/s3"
	keystoreSqlite3 "github.com/hightouchio/portmanager/keystore/sqlite3"
	"github.com/hightouchio/portmanager/log"
	"github.com/hightouchio/portmanager/stats"
	"github.com/hightouchio/portmanager/store"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/dig"
	"go.uber.org/fx"
)

const (
	ConfigDir          = "config_dir"
	ConfigProfilesFile = "profiles_file"
	ConfigActiveFile   = "active_file"
	ConfigSSHProgram   = "ssh.program"

	ConfigHTTPAddr     = "http.addr"
	ConfigPprofEnabled = "pprof.enabled"

	ConfigKeystoreType          = "keystore.type"
	ConfigKeystoreTableName     = "keystore.table_name"
	ConfigKeystoreSqlite3Path   = "keystore.sqlite3.path"
	ConfigKeystorePostgresUri   = "keystore.postgres.uri"
	ConfigKeystoreS3BucketName  = "keystore.s3.bucket_name"
	ConfigKeystoreS3KeyPrefix   = "keystore.s3.key_prefix"
	ConfigKeystoreS3Endpoint    = "keystore.s3.endpoint"
	ConfigKeystoreS3DisableSSL  = "keystore.s3.disable_ssl"
	ConfigKeystoreS3PathStyle   = "keystore.s3.force_path_style"
	ConfigKeystoreS3Region      = "keystore.s3.bucket_region"
	ConfigKeystoreGCSBucketName = "keystore.gcs.bucket_name"
	ConfigKeystoreGCSKeyPrefix  = "keystore.gcs.key_prefix"

	ConfigLogLevel   = "log.level"
	ConfigLogFormat  = "log.format"
	ConfigStatsdAddr = "statsd.addr"
)

const defaultBackupsFile = "backups.db"

func initDefaults(config *viper.Viper) {
	config.SetDefault(ConfigDir, store.DefaultConfigDir)
	config.SetDefault(ConfigSSHProgram, "ssh")
	config.SetDefault(ConfigHTTPAddr, "127.0.0.1:8080")
	config.SetDefault(ConfigKeystoreType, "sqlite3")
	config.SetDefault(ConfigKeystoreTableName, "portmanager_backups")
	config.SetDefault(ConfigLogLevel, "warn")
	config.SetDefault(ConfigLogFormat, "text")
}

type configError struct {
	msg string
}

func (e configError) Error() string {
	return e.msg
}

func newConfigError(parts ...string) error {
	return configError{strings.Join(parts, " ")}
}

// newConfig layers flags over PORTMANAGER_* environment variables over an
// optional config file in the config directory.
func newConfig(cmd *cobra.Command) (*viper.Viper, error) {
	config := viper.New()
	config.AutomaticEnv()
	config.SetEnvPrefix("PORTMANAGER")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	initDefaults(config)

	for key, flag := range map[string]string{
		ConfigDir:       "config-dir",
		ConfigLogLevel:  "log-level",
		ConfigLogFormat: "log-format",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := config.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "could not bind flag %s", flag)
			}
		}
	}

	dir, err := homedir.Expand(config.GetString(ConfigDir))
	if err != nil {
		return nil, newConfigError(ConfigDir, "could not be expanded:", err.Error())
	}
	config.SetConfigName("config")
	config.AddConfigPath(dir)
	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, newConfigError("could not read config file:", err.Error())
		}
	}

	return config, nil
}

// storePaths resolves the store files, defaulting both into config_dir.
func storePaths(config *viper.Viper) (store.Paths, error) {
	paths := store.PathsIn(config.GetString(ConfigDir))
	if file := config.GetString(ConfigProfilesFile); file != "" {
		paths.Profiles = file
	}
	if file := config.GetString(ConfigActiveFile); file != "" {
		paths.Active = file
	}
	return paths.Expand()
}

func newLogger(config *viper.Viper) (*logrus.Logger, error) {
	logger, err := log.Init(config.GetString(ConfigLogLevel), config.GetString(ConfigLogFormat))
	if err != nil {
		return nil, configError{err.Error()}
	}
	return logger, nil
}

// newStats initializes a Stats client
func newStats(config *viper.Viper, logger logrus.FieldLogger) (stats.Stats, error) {
	var statsdClient statsd.ClientInterface

	if statsdAddr := config.GetString(ConfigStatsdAddr); statsdAddr != "" {
		var err error
		statsdClient, err = statsd.New(statsdAddr, statsd.WithMaxBytesPerPayload(4096))
		if err != nil {
			return stats.Stats{}, errors.Wrap(err, "could not initialize statsd client")
		}
	} else {
		statsdClient = &statsd.NoOpClient{}
	}

	st := stats.New(statsdClient, logger).WithPrefix(name)
	if version != "" {
		st = st.WithTags(stats.Tags{"version": version})
	}
	return st, nil
}

// newKeystore opens the backup keystore selected by keystore.type. Keystores
// holding a connection implement io.Closer.
func newKeystore(ctx context.Context, config *viper.Viper) (keystore.Keystore, error) {
	switch keystoreType := config.GetString(ConfigKeystoreType); keystoreType {
	case "in-memory":
		return keystoreInMemory.New(), nil

	case "sqlite3":
		path := config.GetString(ConfigKeystoreSqlite3Path)
		if path == "" {
			path = filepath.Join(config.GetString(ConfigDir), defaultBackupsFile)
		}
		path, err := homedir.Expand(path)
		if err != nil {
			return nil, newConfigError(ConfigKeystoreSqlite3Path, "could not be expanded:", err.Error())
		}
		return keystoreSqlite3.New(path, config.GetString(ConfigKeystoreTableName))

	case "postgres":
		uri := config.GetString(ConfigKeystorePostgresUri)
		if uri == "" {
			return nil, newConfigError(ConfigKeystorePostgresUri, "must be set")
		}
		return keystorePostgres.Connect(ctx, uri)

	case "s3":
		bucketName := config.GetString(ConfigKeystoreS3BucketName)
		if bucketName == "" {
			return nil, newConfigError(ConfigKeystoreS3BucketName, "must be set")
		}

		awsConfig := &aws.Config{}
		if config.IsSet(ConfigKeystoreS3Region) {
			awsConfig.Region = aws.String(config.GetString(ConfigKeystoreS3Region))
		}
		if config.IsSet(ConfigKeystoreS3Endpoint) {
			awsConfig.Endpoint = aws.String(config.GetString(ConfigKeystoreS3Endpoint))
		}
		if config.IsSet(ConfigKeystoreS3DisableSSL) {
			awsConfig.DisableSSL = aws.Bool(config.GetBool(ConfigKeystoreS3DisableSSL))
		}
		if config.IsSet(ConfigKeystoreS3PathStyle) {
			awsConfig.S3ForcePathStyle = aws.Bool(config.GetBool(ConfigKeystoreS3PathStyle))
		}
		sess, err := session.NewSession(awsConfig)
		if err != nil {
			return nil, configError{"could not init aws session"}
		}

		return keystoreS3.S3{
			S3:         s3.New(sess),
			BucketName: bucketName,
			KeyPrefix:  config.GetString(ConfigKeystoreS3KeyPrefix),
		}, nil

	case "gcs":
		bucketName := config.GetString(ConfigKeystoreGCSBucketName)
		if bucketName == "" {
			return nil, newConfigError(ConfigKeystoreGCSBucketName, "must be set")
		}

		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "could not init GCS client")
		}

		return keystoreGCS.GCS{
			Client:     client,
			BucketName: bucketName,
			KeyPrefix:  config.GetString(ConfigKeystoreGCSKeyPrefix),
		}, nil

	default:
		return nil, configError{fmt.Sprintf("unsupported keystore type: %s", keystoreType)}
	}
}

// application is what every command needs: configuration, logging, metrics
// and both stores.
type application struct {
	Config   *viper.Viper
	Logger   *logrus.Logger
	Stats    stats.Stats
	Profiles *store.ProfileStore
	Active   *store.ActiveStore
}

// Context returns ctx carrying the logger and stats, for code that only
// receives a context.
func (a *application) Context(ctx context.Context) context.Context {
	return log.WithLogger(stats.InjectContext(ctx, a.Stats), a.Logger)
}

func newApplication(cmd *cobra.Command) (*application, error) {
	config, err := newConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(config)
	if err != nil {
		return nil, err
	}

	st, err := newStats(config, logger)
	if err != nil {
		return nil, err
	}

	paths, err := storePaths(config)
	if err != nil {
		return nil, configError{err.Error()}
	}
	logger.WithFields(logrus.Fields{
		"profiles": paths.Profiles,
		"active":   paths.Active,
	}).Debug("using stores")

	return &application{
		Config:   config,
		Logger:   logger,
		Stats:    st,
		Profiles: store.NewProfileStore(paths.Profiles, logger),
		Active:   store.NewActiveStore(paths.Active, logger),
	}, nil
}

// startApplication boots the dependency injection framework for long-running
// commands, executes the bootFuncs and blocks until ctx is cancelled.
func startApplication(ctx context.Context, app *application, bootFuncs ...interface{}) error {
	fxApp := fx.New(
		fx.Provide(
			func() *viper.Viper { return app.Config },
			func() logrus.FieldLogger { return app.Logger },
			func() stats.Stats { return app.Stats },
			func() *store.ProfileStore { return app.Profiles },
			func() *store.ActiveStore { return app.Active },

			// Profile API.
			newProfileAPI,
			// Expose an HTTP server for anything that needs it.
			newHTTPServer,
			// Healthcheck manager. Reports status over HTTP.
			newHealthcheck,
		),

		fx.Invoke(bootFuncs...),

		fx.NopLogger,
	)

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := fxApp.Start(startCtx); err != nil {
		switch v := dig.RootCause(err).(type) {
		case configError:
			return errors.Wrap(v, "config error")
		default:
			return errors.Wrap(v, "startup error")
		}
	}
	app.Logger.WithField("version", version).Info("start")

	select {
	case <-ctx.Done():
	case <-fxApp.Done():
	}
	app.Logger.Info("stop")

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := fxApp.Stop(stopCtx); err != nil {
		return errors.Wrap(dig.RootCause(err), "shutdown error")
	}

	return nil
}

func newProfileAPI(config *viper.Viper, profiles *store.ProfileStore, active *store.ActiveStore, st stats.Stats, logger logrus.FieldLogger) api.API {
	return api.API{
		Profiles: profiles,
		Active:   active,
		Stats:    st.WithPrefix("api"),
		Logger:   logger.WithField("component", "api"),
		Check:    conncheck.Check,
		Program:  config.GetString(ConfigSSHProgram),
	}
}

func newHTTPServer(lc fx.Lifecycle, config *viper.Viper, log logrus.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	server := &http.Server{Addr: config.GetString(ConfigHTTPAddr), Handler: router}

	logger := log.WithField("component", "http")

	// Log every request.
	router.Use(LoggingMiddleware(logger))

	// Conditionally enable pprof profiling
	if config.GetBool(ConfigPprofEnabled) {
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.WithField("addr", server.Addr).Info("start")
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("http listener")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})

	return router
}

// newHealthcheck provides a healthcheck registry and attaches to the HTTP server
func newHealthcheck(router *mux.Router) *healthcheckManager {
	mgr := newHealthcheckManager()
	router.Handle("/healthcheck", mgr)
	return mgr
}
