package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaitlab/stride.report/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the results database schema",
}

// openForMigration opens the database without requiring the schema to be
// current, since migrations are what bring it current.
func openForMigration() (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return db.Open(cfg.GetDatabasePath())
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		database, err := openForMigration()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.MigrateUp(); err != nil {
			return err
		}
		version, dirty, err := database.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Printf("All migrations applied. Current version: %d (dirty: %v)\n", version, dirty)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		database, err := openForMigration()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.MigrateDown(); err != nil {
			return err
		}
		version, dirty, err := database.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Printf("Rolled back one migration. Current version: %d (dirty: %v)\n", version, dirty)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		database, err := openForMigration()
		if err != nil {
			return err
		}
		defer database.Close()

		version, dirty, err := database.MigrateVersion()
		if err != nil {
			return err
		}
		latest, err := db.LatestMigrationVersion()
		if err != nil {
			return err
		}

		fmt.Printf("Current version: %d\n", version)
		fmt.Printf("Latest available: %d\n", latest)
		fmt.Printf("Dirty: %v\n", dirty)
		if dirty {
			fmt.Println("\nWARNING: a migration failed mid-execution.")
			fmt.Println("Inspect the database, fix any issues, then run: stride-report migrate force <version>")
		} else if version < latest {
			fmt.Printf("\n%d migration(s) pending. Run: stride-report migrate up\n", latest-version)
		}
		return nil
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force the schema version (recovery from a dirty state only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var version int
		if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
			return fmt.Errorf("invalid version number: %s", args[0])
		}

		database, err := openForMigration()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.MigrateForce(version); err != nil {
			return err
		}
		fmt.Printf("Schema version forced to %d\n", version)
		return nil
	},
}

var migrateToCmd = &cobra.Command{
	Use:   "version <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		var version uint
		if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
			return fmt.Errorf("invalid version number: %s", args[0])
		}

		database, err := openForMigration()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.MigrateTo(version); err != nil {
			return err
		}
		fmt.Printf("Migrated to version %d\n", version)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateForceCmd, migrateToCmd)
}
