package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"loremaker/internal/loremaker"
	"loremaker/pkg/logger"
	"loremaker/pkg/models"
	"loremaker/pkg/utils"
)

var (
	fetchJSON    bool
	fetchVerbose bool
)

func fetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the sheet pipeline locally and print the result",
		RunE:  runFetch,
	}
	cmd.Flags().BoolVar(&fetchJSON, "json", false, "print the whole batch as JSON")
	cmd.Flags().BoolVarP(&fetchVerbose, "verbose", "v", false, "log every fetch attempt")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := utils.LoadConfig()

	log := logger.Nop()
	if fetchVerbose {
		l, err := logger.New(cfg.LogMode)
		if err != nil {
			return err
		}
		defer l.Sync()
		log = l
	}

	batch, err := loremaker.NewFetcher(cfg, log).Load(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if fetchJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	}
	printBatch(out, batch)
	return nil
}

func printBatch(out io.Writer, b *loremaker.Batch) {
	fmt.Fprintf(out, "Source:     %s\n", b.Source)
	fmt.Fprintf(out, "Loaded at:  %s\n", b.LoadedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Characters: %d\n", len(b.Characters))
	if b.Error != "" {
		fmt.Fprintln(out, "\nFallbacks:")
		for _, item := range strings.Split(b.Error, "; ") {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}
	fmt.Fprintln(out)
	printCharacters(out, b.Characters)
}

func printCharacters(out io.Writer, chars []models.Character) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tFACTION\tPOWERS")
	for _, c := range chars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.Slug, c.Name, strings.Join(c.Faction, ", "), len(c.Powers))
	}
	tw.Flush()
}
