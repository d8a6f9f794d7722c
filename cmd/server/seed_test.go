package main

import (
	"context"
	"testing"

	"curia-backend/internal/config"
	"curia-backend/internal/schema"
	"curia-backend/internal/store"
)

func TestSeedRun_LoadsAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	cfg = &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Name: "seed", Path: t.TempDir()},
		Codes:    config.CodesConfig{CuriaPrefix: "CUR", ScholasticPrefix: "SCH"},
	}

	for range 2 {
		if err := seedRun(ctx, "testdata/reference.yaml"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var codes, provinces int64
	if err := db.ORM.Model(&schema.ReferenceCode{}).Count(&codes).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.ORM.Model(&schema.Province{}).Count(&provinces).Error; err != nil {
		t.Fatal(err)
	}
	if codes != 10 || provinces != 2 {
		t.Fatalf("expected 10 codes and 2 provinces, got %d and %d", codes, provinces)
	}

	var rc schema.ReferenceCode
	if err := db.ORM.Where("quick_code_type = ? AND quick_code = ?", "ctrtyp", "SCHL").Take(&rc).Error; err != nil {
		t.Fatal(err)
	}
	if rc.Label != "School" {
		t.Fatalf("expected label School, got %q", rc.Label)
	}
}

func TestSeedRun_MissingFile(t *testing.T) {
	cfg = &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}}
	if err := seedRun(context.Background(), "testdata/absent.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
