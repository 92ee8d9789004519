package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"loremaker/internal/auth"
	"loremaker/pkg/utils"
)

var (
	tokenSubject string
	tokenSave    bool
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token signed with LOREMAKER_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := utils.LoadAuthConfig()
			svc := auth.TokenService{
				Secret:   []byte(cfg.JWTSecret),
				Issuer:   cfg.JWTIssuer,
				Duration: cfg.JWTDuration,
			}
			token, exp, err := svc.Sign(tokenSubject, auth.RoleAdmin)
			if err != nil {
				return err
			}

			if tokenSave {
				if err := saveToken(tokenPath, token); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved to %s, expires %s\n", tokenPath, exp.Format(time.RFC3339))
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	cmd.Flags().BoolVar(&tokenSave, "save", false, "also write the token to --token-file")
	return cmd
}
