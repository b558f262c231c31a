package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/disputeq-io/disputeq/internal/config"
	"github.com/disputeq-io/disputeq/internal/database"
	"github.com/disputeq-io/disputeq/internal/models"
	"github.com/disputeq-io/disputeq/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "disputeq",
	Short:   "DisputeQ CLI - dispute work-queue management tool",
	Long:    "Utilities for managing a DisputeQ installation: schema migration,\nconfiguration inspection and reference-catalog loading.",
	Version: version.String(),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DisputeQ CLI %s\n", rootCmd.Version)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the application tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Println("Schema is up to date")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "config-show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		// The JWT secret never leaves the process.
		redacted := *cfg
		if redacted.Auth.JWT.Secret != "" {
			redacted.Auth.JWT.Secret = "********"
		}
		out, err := yaml.Marshal(&redacted)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

// catalogFile is the YAML shape accepted by catalog-load.
type catalogFile struct {
	RefDetails []struct {
		RefCodeID         int    `yaml:"refCodeId"`
		EntityName        string `yaml:"entityName"`
		EntityValue       string `yaml:"entityValue"`
		ParentRootCauseID int    `yaml:"parentRootCauseId"`
	} `yaml:"refDetails"`
}

var catalogLoadCmd = &cobra.Command{
	Use:   "catalog-load <file>",
	Short: "Load or refresh the reference catalog from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("parse catalog: %w", err)
		}

		db, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()

		tx, err := db.Beginx()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, d := range file.RefDetails {
			entry := models.RefDetail{
				RefCodeID:         d.RefCodeID,
				EntityName:        d.EntityName,
				EntityValue:       d.EntityValue,
				ParentRootCauseID: d.ParentRootCauseID,
			}
			res, err := tx.Exec(tx.Rebind(
				"UPDATE ref_detail SET entity_name = ?, entity_value = ?, parent_root_cause_id = ? WHERE ref_code_id = ?"),
				entry.EntityName, entry.EntityValue, entry.ParentRootCauseID, entry.RefCodeID)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				if _, err := tx.Exec(tx.Rebind(
					"INSERT INTO ref_detail (ref_code_id, entity_name, entity_value, parent_root_cause_id) VALUES (?, ?, ?, ?)"),
					entry.RefCodeID, entry.EntityName, entry.EntityValue, entry.ParentRootCauseID); err != nil {
					return err
				}
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		fmt.Printf("Loaded %d catalog entries\n", len(file.RefDetails))
		return nil
	},
}

func connect() (*sqlx.DB, error) {
	cfg := config.Get()
	if cfg.Database.Driver != "" {
		os.Setenv("DB_DRIVER", cfg.Database.Driver)
	}
	dsn := database.DSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
	return database.Open(dsn)
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(catalogLoadCmd)
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}
	if err := config.Load(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
