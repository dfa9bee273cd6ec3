package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
	"github.com/noah-isme/faculty-realloc-api/internal/service"
)

func tokenCmd(app *cliApp) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a short-lived access token for an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.UserRole(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl <= 0 {
				ttl = app.cfg.JWT.Expiration
			}
			tokens := service.NewTokenService(service.TokenConfig{
				Secret: app.cfg.JWT.Secret,
				Issuer: app.cfg.JWT.Issuer,
				Expiry: ttl,
			}, app.logger)

			token, expiresAt, err := tokens.IssueToken(userID, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Subject user ID (required)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role claim: SUPERADMIN, ADMIN, HOD or FACULTY")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime; defaults to JWT_EXPIRATION")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
