package main

import (
	"fmt"
	"time"

	app "flowerstand/cmd"
	httpapi "flowerstand/internal/adapters/in/http"
	"flowerstand/internal/core/domain/model/kernel"

	"github.com/spf13/cobra"
)

func tokenCmd(opts *options) *cobra.Command {
	var (
		actor string
		roles []string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API bearer token with the service secret",
		Example: `  settlectl token --actor 6f1c8a52-5a43-4d7e-9b8c-1f0e2d3c4b5a --role operator --ttl 30m`,
		RunE: func(*cobra.Command, []string) error {
			actorID, err := kernel.UUIDFromString(actor)
			if err != nil {
				return fmt.Errorf("--actor: %w", err)
			}
			configs, err := app.LoadConfig(opts.envFile)
			if err != nil {
				return err
			}

			token, err := httpapi.IssueToken(
				httpapi.AuthConfig{Secret: []byte(configs.JWTSecret), Issuer: configs.JWTIssuer},
				actorID, ttl, roles...,
			)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(opts.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "actor UUID placed in the subject claim")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "role to grant (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}
