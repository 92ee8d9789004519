package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"time"

	"loremaker/internal/loremaker"
	"loremaker/internal/snapshot"
	"loremaker/pkg/database"
	"loremaker/pkg/logger"
	"loremaker/pkg/models"
	"loremaker/pkg/utils"
)

func main() {
	var (
		out = flag.String("out", "data/characters.csv", "output CSV path")
		id  = flag.String("snapshot", "", "snapshot id (default: latest)")
	)
	flag.Parse()

	_ = utils.LoadDotEnv(".env")
	cfg := utils.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbCfg := database.DefaultConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatal("db open failed", "path", dbCfg.Path, "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	repo := snapshot.NewRepo(db)
	snap, err := pickSnapshot(ctx, repo, *id)
	if err != nil {
		log.Fatal("no snapshot to export", "error", err)
	}

	chars, err := repo.Characters(ctx, snap.ID)
	if err != nil {
		log.Fatal("load snapshot characters", "id", snap.ID, "error", err)
	}

	if err := writeFile(*out, chars); err != nil {
		log.Fatal("export failed", "path", *out, "error", err)
	}
	log.Info("exported snapshot", "id", snap.ID, "characters", len(chars), "path", *out)
}

func pickSnapshot(ctx context.Context, repo *snapshot.Repo, id string) (*snapshot.Snapshot, error) {
	if id != "" {
		snap, err := repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, errors.New("snapshot " + id + " not found")
		}
		return snap, nil
	}

	latest, err := repo.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, errors.New("no snapshots stored")
	}
	return &latest[0], nil
}

func writeFile(path string, chars []models.Character) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeCSV(f, chars)
}

func writeCSV(w io.Writer, chars []models.Character) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(loremaker.ExportHeader()); err != nil {
		return err
	}
	for _, c := range chars {
		if err := cw.Write(loremaker.ExportRow(c)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
