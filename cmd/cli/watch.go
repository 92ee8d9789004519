package main

import (
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow load events from the API's websocket feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			wsURL, err := websocketURL(apiBase, "/ws")
			if err != nil {
				return err
			}

			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", wsURL, err)
			}
			defer conn.Close()
			fmt.Fprintf(cmd.ErrOrStderr(), "connected to %s\n", wsURL)

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(msg))
			}
		},
	}
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}
