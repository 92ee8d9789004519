package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"loremaker/pkg/models"
)

type listResponse struct {
	Characters []models.Character `json:"characters"`
	Total      int                `json:"total"`
	Error      *string            `json:"error"`
	Source     string             `json:"source"`
}

type showResponse struct {
	Character models.Character   `json:"character"`
	Allies    []models.Character `json:"allies"`
}

var (
	listQuery   string
	listFaction string
	listTag     string
	snapToken   string
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters served by the API",
		RunE:  runList,
	}
	cmd.Flags().StringVarP(&listQuery, "query", "q", "", "name or alias contains")
	cmd.Flags().StringVar(&listFaction, "faction", "", "only this faction")
	cmd.Flags().StringVar(&listTag, "tag", "", "only this tag")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	for k, v := range map[string]string{"q": listQuery, "faction": listFaction, "tag": listTag} {
		if v != "" {
			q.Set(k, v)
		}
	}
	endpoint := strings.TrimRight(apiBase, "/") + "/characters"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var resp listResponse
	if err := doJSON(cmd.Context(), newClient(), http.MethodGet, endpoint, "", &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printCharacters(out, resp.Characters)
	fmt.Fprintf(out, "\n%d characters from %s\n", resp.Total, resp.Source)
	if resp.Error != nil {
		fmt.Fprintf(out, "fallbacks: %s\n", *resp.Error)
	}
	return nil
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one character and its allies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := strings.TrimRight(apiBase, "/") + "/characters/" + url.PathEscape(args[0])

			var resp showResponse
			if err := doJSON(cmd.Context(), newClient(), http.MethodGet, endpoint, "", &resp); err != nil {
				return err
			}
			printCharacter(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func printCharacter(out io.Writer, r showResponse) {
	c := r.Character
	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.Slug)
	if len(c.Alias) > 0 {
		fmt.Fprintf(out, "  aka:      %s\n", strings.Join(c.Alias, ", "))
	}
	if len(c.Faction) > 0 {
		fmt.Fprintf(out, "  faction:  %s\n", strings.Join(c.Faction, ", "))
	}
	if c.ShortDesc != "" {
		fmt.Fprintf(out, "  %s\n", c.ShortDesc)
	}
	for _, p := range c.Powers {
		mark := ""
		if p.Estimated {
			mark = " (estimated)"
		}
		fmt.Fprintf(out, "  power:    %s %d/10%s\n", p.Name, p.Level, mark)
	}
	if len(r.Allies) > 0 {
		names := make([]string, 0, len(r.Allies))
		for _, a := range r.Allies {
			names = append(names, a.Name)
		}
		fmt.Fprintf(out, "  allies:   %s\n", strings.Join(names, ", "))
	}
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Archive the API's current batch (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := snapToken
			if token == "" {
				t, err := readToken(tokenPath)
				if err != nil {
					return fmt.Errorf("no token (run `loremaker token --save`): %w", err)
				}
				token = t
			}

			var snap map[string]any
			endpoint := strings.TrimRight(apiBase, "/") + "/admin/snapshots"
			if err := doJSON(cmd.Context(), newClient(), http.MethodPost, endpoint, token, &snap); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringVar(&snapToken, "token", "", "admin token (default: read from --token-file)")
	return cmd
}

func newClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %d %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

type tokenData struct {
	Token string `json:"token"`
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}
