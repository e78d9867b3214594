// Command setup provisions and inspects the database and object storage used
// by water-service.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"water-service/internal/config"
	"water-service/internal/database/minio"
	"water-service/internal/database/postgres"
	"water-service/internal/models"
	"water-service/internal/repository"
	"water-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	var schemaPath string

	cmd := &cobra.Command{
		Use:           "setup",
		Short:         "Provision and check water-service infrastructure",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env", defaultEnvFile, "dotenv file to load before running")

	setupDatabase := &cobra.Command{
		Use:   "setup-database",
		Short: "Create the database if needed and apply schema.sql",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetupDatabase(cmd.Context(), config.New(), schemaPath)
		},
	}
	setupDatabase.Flags().StringVar(&schemaPath, "schema", "", "path to schema.sql (searched for when empty)")

	setupAll := &cobra.Command{
		Use:   "setup-all",
		Short: "Verify the environment, then set up database and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New()
			if err := runVerifyEnv(); err != nil {
				return err
			}
			if err := runSetupDatabase(cmd.Context(), cfg, schemaPath); err != nil {
				return err
			}
			return runSetupStorage(cmd.Context(), cfg)
		},
	}
	setupAll.Flags().StringVar(&schemaPath, "schema", "", "path to schema.sql (searched for when empty)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "verify-env",
			Short: "Check that required environment variables are configured",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runVerifyEnv()
			},
		},
		setupDatabase,
		&cobra.Command{
			Use:   "setup-storage",
			Short: "Create the documents and signatures buckets",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSetupStorage(cmd.Context(), config.New())
			},
		},
		setupAll,
		&cobra.Command{
			Use:   "status",
			Short: "Report environment, buckets, table and request counts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStatus(cmd.Context(), config.New())
			},
		},
		&cobra.Command{
			Use:   "test-insert",
			Short: "Insert and delete a sample request and a sample document",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTestInsert(cmd.Context(), config.New())
			},
		},
	)

	return cmd
}

// loadEnv reads the dotenv file. A missing default file is fine; a missing
// file named explicitly is not.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == defaultEnvFile {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	fmt.Printf("Loaded environment from %s\n", path)
	return nil
}

func runVerifyEnv() error {
	fmt.Println("Verifying environment configuration...")
	failed := 0
	for _, check := range config.VerifyEnv() {
		if check.OK() {
			fmt.Printf("  [ok]   %s\n", check.Name)
			continue
		}
		failed++
		fmt.Printf("  [fail] %s: %s\n", check.Name, check.Problem)
	}
	if failed > 0 {
		return fmt.Errorf("%d environment variable(s) need attention", failed)
	}
	fmt.Println("Environment looks good.")
	return nil
}

func runSetupDatabase(ctx context.Context, cfg *config.WaterServiceConfig, schemaPath string) error {
	fmt.Printf("Setting up database %s on %s:%s...\n", cfg.PostgresCfg.DBname, cfg.PostgresCfg.Host, cfg.PostgresCfg.Port)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	executed, err := postgres.ExecuteSchema(db, schemaPath)
	if err != nil {
		return err
	}
	fmt.Printf("  executed %d schema statement(s)\n", executed)

	exists, err := repository.NewWaterServiceRequestRepository(db).TableExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("water_service_requests table is still missing after applying the schema")
	}
	fmt.Println("Database ready.")
	return nil
}

func runSetupStorage(ctx context.Context, cfg *config.WaterServiceConfig) error {
	fmt.Printf("Setting up storage at %s...\n", cfg.MinioCfg.MinioURL)
	client, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		return err
	}
	if err := client.EnsureRequiredBuckets(ctx); err != nil {
		return err
	}
	for _, spec := range minio.RequiredBuckets {
		fmt.Printf("  %s: private, max %d MB, %v\n", spec.Name, spec.MaxObjectSize>>20, spec.AllowedMimeTypes)
	}
	fmt.Println("Storage ready.")
	return nil
}

// runStatus keeps going past individual failures so one report shows
// everything that is wrong.
func runStatus(ctx context.Context, cfg *config.WaterServiceConfig) error {
	var problems []string

	fmt.Println("Environment:")
	for _, check := range config.VerifyEnv() {
		state := "ok"
		if !check.OK() {
			state = check.Problem
			problems = append(problems, check.Name)
		}
		fmt.Printf("  %-20s %s\n", check.Name, state)
	}

	fmt.Println("Storage:")
	if client, err := minio.NewMinioClient(cfg.MinioCfg); err != nil {
		fmt.Printf("  unreachable: %v\n", err)
		problems = append(problems, "storage")
	} else if buckets, err := client.CheckBuckets(ctx); err != nil {
		fmt.Printf("  error: %v\n", err)
		problems = append(problems, "storage")
	} else {
		for _, bucket := range buckets {
			fmt.Printf("  %-20s exists=%t\n", bucket.Name, bucket.Exists)
			if !bucket.Exists {
				problems = append(problems, "bucket "+bucket.Name)
			}
		}
	}

	fmt.Println("Database:")
	db, err := postgres.Connect(cfg.PostgresCfg)
	if err != nil {
		fmt.Printf("  unreachable: %v\n", err)
		problems = append(problems, "database")
	} else {
		defer db.Close()
		repo := repository.NewWaterServiceRequestRepository(db)
		exists, err := repo.TableExists(ctx)
		switch {
		case err != nil:
			fmt.Printf("  error: %v\n", err)
			problems = append(problems, "database")
		case !exists:
			fmt.Println("  water_service_requests table missing")
			problems = append(problems, "table")
		default:
			counts, err := repo.CountByStatus(ctx)
			if err != nil {
				fmt.Printf("  error counting requests: %v\n", err)
				problems = append(problems, "database")
			}
			for _, count := range counts {
				fmt.Printf("  %-30s %d\n", count.Status, count.Count)
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("setup incomplete: %v", problems)
	}
	fmt.Println("All checks passed.")
	return nil
}

func sampleSubmission() models.SubmissionForm {
	return models.SubmissionForm{
		ApplicantName:               "Setup Check",
		ApplicantEmail:              "setup-check@example.com",
		ApplicantPhone:              "5551234567",
		ServiceAddress:              "123 Test Street",
		MailingAddressSameAsService: "true",
		PropertyUseType:             string(models.PropertyOwnerOccupied),
		ServiceTerritory:            string(models.TerritoryInsideCityLimits),
		BillTypePreference:          string(models.BillByEmail),
		AcknowledgedServiceTerms:    "true",
		ApplicantSignature:          "Setup Check",
	}
}

// runTestInsert walks the same path as a real submission against live
// backends and removes what it created.
func runTestInsert(ctx context.Context, cfg *config.WaterServiceConfig) error {
	db, err := postgres.Connect(cfg.PostgresCfg)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := repository.NewWaterServiceRequestRepository(db)

	calculator := services.NewRateCalculator()
	form := sampleSubmission()
	rate := calculator.CalculateMonthlyRate(models.TerritoryInsideCityLimits, 1, 1, false, false)
	deposit, err := calculator.CalculateDeposit(models.PropertyOwnerOccupied, models.TerritoryInsideCityLimits, nil)
	if err != nil {
		return err
	}

	record, err := services.AssembleRequestRecord(services.AssemblyInput{
		Form:       form,
		Rate:       rate,
		Deposit:    deposit,
		Submission: models.SubmissionContext{ClientIP: "127.0.0.1", UserAgent: "water-service-setup"},
		Now:        time.Now(),
	})
	if err != nil {
		return err
	}
	record.Metadata["test"] = true

	fmt.Println("Inserting sample request...")
	id, err := repo.Create(ctx, record)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	fmt.Printf("  inserted %s\n", id)

	stored, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("read back failed: %w", err)
	}
	fmt.Printf("  read back status=%s deposit=%s\n", stored.Status, stored.DepositAmountRequired.Decimal.StringFixed(2))

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("cleanup failed, delete %s manually: %w", id, err)
	}
	fmt.Println("  deleted sample request")

	return testDocumentRoundTrip(ctx, cfg)
}

func testDocumentRoundTrip(ctx context.Context, cfg *config.WaterServiceConfig) error {
	client, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		return err
	}

	content := []byte("%PDF-1.4\n% water-service setup check\n")
	objectName := services.DocumentObjectName(models.DocumentLease, "setup-check.pdf", time.Now())
	bucket := minio.Storage.Documents

	fmt.Println("Uploading sample document...")
	if _, err := client.UploadFile(ctx, bucket, objectName, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		return err
	}

	exists, err := client.FileExists(ctx, bucket, objectName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("uploaded object %s not found", objectName)
	}

	object, err := client.GetFile(ctx, bucket, objectName)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(object)
	object.Close()
	if err != nil {
		return fmt.Errorf("failed to read back %s: %w", objectName, err)
	}
	if !bytes.Equal(data, content) {
		return fmt.Errorf("object %s content mismatch", objectName)
	}
	fmt.Printf("  stored and read back %s/%s\n", bucket, objectName)

	if err := client.DeleteFile(ctx, bucket, objectName); err != nil {
		return fmt.Errorf("cleanup failed, delete %s manually: %w", objectName, err)
	}
	fmt.Println("  deleted sample document")
	return nil
}
