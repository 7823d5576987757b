package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
)

func newTokenCommand() *cobra.Command {
	var (
		id        string
		role      string
		admission string
		kind      string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(id) == "" || strings.TrimSpace(role) == "" {
				return errors.New("--id and --role are required")
			}
			actor := domain.Actor{ID: id, Role: role, Kind: domain.ActorKind(kind)}
			switch actor.Kind {
			case domain.ActorKindIdentity, domain.ActorKindWorker:
			default:
				return fmt.Errorf("unknown kind %q", kind)
			}
			if admission != "" {
				actor.AdmissionNumber = &admission
			}
			token, exp, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes).GenerateToken(actor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", exp.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Subject id")
	cmd.Flags().StringVar(&role, "role", "", "Role name carried by the token")
	cmd.Flags().StringVar(&admission, "admission", "", "Admission number for student tokens")
	cmd.Flags().StringVar(&kind, "kind", string(domain.ActorKindIdentity), "identity or worker")
	return cmd
}
