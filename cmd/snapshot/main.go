package main

import (
	"context"
	"flag"
	"time"

	"loremaker/internal/loremaker"
	"loremaker/internal/snapshot"
	"loremaker/pkg/database"
	"loremaker/pkg/logger"
	"loremaker/pkg/utils"
)

func main() {
	allowSample := flag.Bool("allow-sample", false, "store the batch even when it fell back to the sample dataset")
	flag.Parse()

	_ = utils.LoadDotEnv(".env")
	cfg := utils.LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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

	batch, err := loremaker.NewFetcher(cfg, log).Load(ctx)
	if err != nil {
		log.Fatal("load aborted", "error", err)
	}
	if batch.IsSample() && !*allowSample {
		log.Fatal("sheet unreachable, not storing sample data", "error", batch.Error)
	}

	snap, err := snapshot.NewRepo(db).Save(ctx, batch)
	if err != nil {
		log.Fatal("save failed", "error", err)
	}

	log.Info("snapshot stored",
		"id", snap.ID,
		"source", snap.Source,
		"characters", snap.CharacterCount,
		"fallbacks", batch.Error,
	)
}
