package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/policy"
	"github.com/yamdb/yamdb-server/internal/service"
	"github.com/yamdb/yamdb-server/internal/validation"
)

func newCreateSuperuserCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an account with superuser rights",
		Long: `Create an account with the superuser and staff flags set. These flags grant
administrator access and cannot be set through the API.

The account signs in like any other: request a confirmation code through
/api/v1/auth/signup with the same username and email.

Examples:
  yamdbctl createsuperuser --username root --email root@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, log, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			enforcer, err := policy.New()
			if err != nil {
				return err
			}
			users := service.NewUserService(db, enforcer, validation.New(), log)

			user, err := users.CreateSuperuser(cmd.Context(), username, email)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// describe flattens field errors into one line per field.
func describe(err error) error {
	fields := domainerrors.FieldsOf(err)
	if len(fields) == 0 {
		return err
	}
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, "\n  %s: %s", name, strings.Join(fields[name], " "))
	}
	return fmt.Errorf("invalid account:%s", b.String())
}
