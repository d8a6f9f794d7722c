package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"curia-backend/internal/engine"
	"curia-backend/internal/metadata"
	"curia-backend/internal/schema"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	ReferenceCodes []schema.ReferenceCode `yaml:"reference_codes"`
	Provinces      []schema.Province      `yaml:"provinces"`
	Divisions      []schema.Division      `yaml:"divisions"`
	Confreres      []schema.Confrere      `yaml:"confreres"`
}

func seedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedRun(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with reference_codes, provinces, divisions and confreres")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func seedRun(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var data seedFile
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	orm := db.ORM.WithContext(ctx)
	if err := upsert(orm, data.ReferenceCodes); err != nil {
		return fmt.Errorf("seed reference codes: %w", err)
	}
	if err := upsert(orm, data.Provinces); err != nil {
		return fmt.Errorf("seed provinces: %w", err)
	}
	if err := upsert(orm, data.Divisions); err != nil {
		return fmt.Errorf("seed divisions: %w", err)
	}
	if err := upsert(orm, data.Confreres); err != nil {
		return fmt.Errorf("seed confreres: %w", err)
	}
	log.Printf("Seeded %d reference codes, %d provinces, %d divisions, %d confreres",
		len(data.ReferenceCodes), len(data.Provinces), len(data.Divisions), len(data.Confreres))

	// Rows loaded by other tools may already carry codes; keep the counters ahead of them.
	codes := engine.NewCodeGenerator(db, nil)
	for _, e := range metadata.Catalog(metadata.CodePrefixes{
		Curia:      cfg.Codes.CuriaPrefix,
		Scholastic: cfg.Codes.ScholasticPrefix,
	}) {
		if e.Code == nil {
			continue
		}
		if err := codes.Sync(ctx, e); err != nil {
			return fmt.Errorf("sync %s codes: %w", e.Name, err)
		}
	}
	return nil
}

// upsert inserts rows, replacing any with the same primary key.
func upsert[T any](db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&rows, 200).Error
}
