package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"loremaker/pkg/utils"
)

const (
	defaultBaseURL = "http://localhost:8080"
	httpTimeout    = 15 * time.Second
)

var (
	apiBase   string
	tokenPath string
)

func main() {
	_ = utils.LoadDotEnv(".env")

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "loremaker",
		Short:         "Load, browse and archive the Loremaker character sheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", defaultBaseURL, "API base URL")
	root.PersistentFlags().StringVar(&tokenPath, "token-file", defaultTokenPath(), "admin token file")

	root.AddCommand(
		fetchCmd(),
		listCmd(),
		showCmd(),
		tokenCmd(),
		snapshotCmd(),
		watchCmd(),
	)
	return root
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.loremaker-token.json"
	}
	return filepath.Join(home, ".loremaker", "token.json")
}
