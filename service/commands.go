package service

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/app/config"
	"quill/app/database"
	"quill/app/models"
	"quill/app/observability"
	"quill/app/routes"
	"quill/app/seed"
	"quill/app/services"
	"quill/app/views"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errBadgerOnly is returned by commands that work on badger files.
var errBadgerOnly = errors.New("this command is only supported with DB_DRIVER=badger")

func serviceOptions(cfg *config.Config) services.Options {
	return services.Options{
		PostsPerPage:    cfg.PostsPerPage,
		CommentsPerPage: cfg.CommentsPerPage,
		Clock:           models.NewClock(cfg.CreatedAtOffset),
	}
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			observability.SetupLogger(cmd.OutOrStdout(), cfg.LogLevel)

			store, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			router := routes.SetupRoutes(routes.Dependencies{
				Posts:     store.Posts,
				Comments:  store.Comments,
				Options:   serviceOptions(cfg),
				Metrics:   observability.NewMetrics(),
				Templates: views.MustLoad(),
				Health:    store.Ping,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return routes.StartServer(ctx, cfg.Addr(), router)
		},
	}
	cmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	_ = viper.BindPFlag("PORT", cmd.Flags().Lookup("port"))
	return cmd
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.DBDriver == config.DriverBadger {
				if _, err := os.Stat(cfg.BadgerPath); err == nil {
					fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
					return nil
				}
			}

			// Opening creates the badger directory or the SQL tables.
			store, err := database.Open(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database initialized successfully")
			return nil
		},
	}
}

func newCleanCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete every post and comment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch cfg.DBDriver {
			case config.DriverBadger:
				if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
					fmt.Fprintln(out, "Database is already clean (does not exist)")
					return nil
				}
			case config.DriverSQLite:
				if _, err := os.Stat(cfg.DatabaseDSN); os.IsNotExist(err) {
					fmt.Fprintln(out, "Database is already clean (does not exist)")
					return nil
				}
			}

			if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}

			switch cfg.DBDriver {
			case config.DriverBadger:
				err = os.RemoveAll(cfg.BadgerPath)
			case config.DriverSQLite:
				err = os.Remove(cfg.DatabaseDSN)
			default:
				err = dropTables(cfg)
			}
			if err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Fprintln(out, "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func dropTables(cfg *config.Config) error {
	db, err := database.OpenGorm(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.NewGormStore(db).Close()
	return db.Migrator().DropTable(&models.Comment{}, &models.Post{})
}

func newBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the badger database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DBDriver != config.DriverBadger {
				return errBadgerOnly
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(cfg.BadgerPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "No database exists to backup")
				return nil
			}

			db, err := database.OpenBadger(cfg.BadgerPath)
			if err != nil {
				return err
			}
			defer db.Close()

			file, err := database.Backup(db, cfg.BackupDir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Database backed up successfully to %s\n", file)
			return nil
		},
	}
}

func newRestoreCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the badger database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DBDriver != config.DriverBadger {
				return errBadgerOnly
			}
			out := cmd.OutOrStdout()
			backupFile := args[0]

			if _, err := os.Stat(backupFile); os.IsNotExist(err) {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}

			if _, err := os.Stat(cfg.BadgerPath); err == nil {
				if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := os.RemoveAll(cfg.BadgerPath); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}

			db, err := database.OpenBadger(cfg.BadgerPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Restore(db, backupFile); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing database without asking")
	return cmd
}

func newSeedCommand() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake posts and comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := database.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			svcOpts := serviceOptions(cfg)
			posts := services.NewPostService(store.Posts, store.Comments, svcOpts)
			comments := services.NewCommentService(store.Comments, store.Posts, svcOpts)

			res, err := seed.Run(cmd.Context(), posts, comments, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d posts and %d comments\n", res.Posts, res.Comments)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Posts, "posts", 25, "Number of posts to create")
	cmd.Flags().IntVar(&opts.CommentsPerPost, "comments", 8, "Maximum comments per post")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed for reproducible content")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "quill", Version)
		},
	}
}
