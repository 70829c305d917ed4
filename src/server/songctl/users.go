package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/storage"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage who can review the catalog",
}

var grantCmd = &cobra.Command{
	Use:   "grant <user-id> <role>",
	Short: "Verify a user and give them a role (user, editor or admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := userstorage.NewDB(connect())

		user, err := grantRole(cmd.Context(), store, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now a verified %s\n", user.Name, user.Email, user.Role)
		return nil
	},
}

func init() {
	usersCmd.AddCommand(grantCmd)
}

// grantRole only works on users that logged in at least once, since that's
// when their account is recorded
func grantRole(ctx context.Context, store userentity.Store, userID string, rawRole string) (userentity.User, error) {
	role := userentity.Role(strings.ToLower(strings.TrimSpace(rawRole)))
	if !role.Satisfies(userentity.UserRole) {
		return userentity.User{}, errors.Newf("Unknown role %q", rawRole)
	}

	user, err := store.GetUser(ctx, userID)
	if err != nil {
		return userentity.User{}, errors.Wrapf(err, "Failed to find user %s", userID)
	}

	user.Verified = true
	user.Role = role

	if err = store.SetUser(ctx, user); err != nil {
		return userentity.User{}, errors.Wrapf(err, "Failed to save user %s", userID)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"role":    role,
	}).Info("Role granted")

	return user, nil
}
