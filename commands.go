package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krishkalaria12/linegrade/auth"
	"github.com/krishkalaria12/linegrade/config"
	"github.com/krishkalaria12/linegrade/database"
	handler "github.com/krishkalaria12/linegrade/handlers"
	"github.com/krishkalaria12/linegrade/logging"
	"github.com/krishkalaria12/linegrade/repository"
	"github.com/krishkalaria12/linegrade/router"
	"github.com/krishkalaria12/linegrade/storage"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type commandContext struct {
	settings *config.Settings
	debugSQL bool
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "linegrade",
		Short:         "Production line image grading backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			ctx.settings = settings
			logging.Init(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat})
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVar(&ctx.debugSQL, "debug-sql", false, "Log every SQL statement")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newWaitForDBCommand(ctx))
	rootCmd.AddCommand(newCreateSuperuserCommand(ctx))

	return rootCmd
}

func (c *commandContext) connect() (*gorm.DB, error) {
	return database.Connect(c.settings.DatabaseDriver, c.settings.DatabaseURL, c.debugSQL)
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, cc *commandContext, migrate bool) error {
	settings := cc.settings

	db, err := cc.connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logging.Error().Err(err).Msg("closing the database connection")
		}
	}()

	if migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	blobs, mediaRoot, closeBlobs, err := openBlobStore(ctx, settings)
	if err != nil {
		return err
	}
	defer closeBlobs()

	store := repository.New(db)
	authService := auth.NewService(settings.JWTSecret, settings.AppURL, store)

	app := router.NewApp()
	router.SetupRoutes(app, handler.New(store, authService, blobs), router.Options{
		Auth:        authService,
		CameraToken: settings.CameraToken,
		MediaRoot:   mediaRoot,
		AccessLog:   true,
	})

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", settings.ListenAddr()).Msg("Server is listening")
		errCh <- app.Listen(settings.ListenAddr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openBlobStore picks the configured backend. The returned media root is
// non-empty only for the local backend, which fiber serves statically.
func openBlobStore(ctx context.Context, settings *config.Settings) (storage.BlobStore, string, func(), error) {
	switch settings.StorageBackend {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, settings.GCSProjectID, settings.GCSBucketName)
		if err != nil {
			return nil, "", nil, err
		}
		return gcs, "", func() {
			if err := gcs.Close(); err != nil {
				logging.Warn().Err(err).Msg("closing storage client")
			}
		}, nil
	default:
		local, err := storage.NewLocalStore(settings.MediaRoot, settings.AppURL+"/media")
		if err != nil {
			return nil, "", nil, err
		}
		return local, local.Root(), func() {}, nil
	}
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logging.Info().Msg("Migrations applied")
			return nil
		},
	}
}

func newWaitForDBCommand(ctx *commandContext) *cobra.Command {
	var timeout, interval time.Duration

	cmd := &cobra.Command{
		Use:   "wait-for-db",
		Short: "Block until the database accepts connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.connect()
			if err != nil {
				return err
			}
			defer database.Close(db)

			waitCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return database.WaitForDB(waitCtx, db, interval)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up after this long")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Delay between attempts")
	return cmd
}

func newCreateSuperuserCommand(ctx *commandContext) *cobra.Command {
	var in auth.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create a staff account with every permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = config.Config("SUPERUSER_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("a password is required, pass --password or set SUPERUSER_PASSWORD")
			}

			db, err := ctx.connect()
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			store := repository.New(db)
			user, err := auth.NewService(ctx.settings.JWTSecret, ctx.settings.AppURL, store).
				CreateSuperuser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address used to log in")
	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (defaults to $SUPERUSER_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
