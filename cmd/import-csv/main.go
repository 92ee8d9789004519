package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"loremaker/internal/loremaker"
	"loremaker/internal/snapshot"
	"loremaker/pkg/database"
	"loremaker/pkg/logger"
	"loremaker/pkg/utils"
)

func main() {
	var (
		in     = flag.String("in", "data/characters.csv", "input file")
		format = flag.String("format", "csv", "input format: csv or gviz")
		dryRun = flag.Bool("dry-run", false, "parse and report without storing")
	)
	flag.Parse()

	_ = utils.LoadDotEnv(".env")
	cfg := utils.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	batch, err := readBatch(*in, loremaker.Format(*format), time.Now())
	if err != nil {
		log.Fatal("import failed", "path", *in, "error", err)
	}
	log.Info("parsed file", "path", *in, "characters", len(batch.Characters))
	if *dryRun {
		return
	}

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

	snap, err := snapshot.NewRepo(db).Save(ctx, batch)
	if err != nil {
		log.Fatal("save failed", "error", err)
	}
	log.Info("snapshot stored", "id", snap.ID, "source", snap.Source, "characters", snap.CharacterCount)
}

// readBatch runs a local export through the same pipeline as a fetched sheet.
func readBatch(path string, format loremaker.Format, now time.Time) (*loremaker.Batch, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case loremaker.FormatCSV:
		rows = loremaker.ParseCSV(string(body))
	case loremaker.FormatGviz:
		rows, err = loremaker.ParseGviz(body)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	chars := loremaker.BuildCharacters(rows, now)
	if len(chars) == 0 {
		return nil, errors.Join(loremaker.ErrNoCharacters, fmt.Errorf("in %s", path))
	}
	return &loremaker.Batch{
		Characters: chars,
		Source:     "file:" + path,
		LoadedAt:   now,
	}, nil
}
