package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"go-auth-dashboard/internal/guard"
	"go-auth-dashboard/internal/model"
)

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session without calling the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			state := c.provider.State()
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", guard.Evaluate(state.Loading, state.Authenticated))
			if state.User != nil {
				printUser(cmd.OutOrStdout(), *state.User)
			}
			return nil
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Fetch the profile from the API, or update it with --first-name/--last-name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			if !c.provider.IsAuthenticated() {
				return model.ErrNotLoggedIn
			}

			var user model.User
			if cmd.Flags().Changed("first-name") || cmd.Flags().Changed("last-name") {
				current, _ := c.provider.User()
				req := model.UpdateProfileRequest{FirstName: current.FirstName, LastName: current.LastName}
				if cmd.Flags().Changed("first-name") {
					req.FirstName = firstName
				}
				if cmd.Flags().Changed("last-name") {
					req.LastName = lastName
				}
				user, err = c.provider.UpdateProfile(cmd.Context(), req)
			} else {
				user, err = c.provider.RefreshProfile(cmd.Context())
			}
			if err != nil {
				return err
			}

			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "New first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "New last name")
	return cmd
}

func printUser(w io.Writer, user model.User) {
	fmt.Fprintf(w, "id:    %s\n", user.ID)
	fmt.Fprintf(w, "email: %s\n", user.Email)
	fmt.Fprintf(w, "name:  %s\n", user.DisplayName())
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(w, "since: %s\n", user.CreatedAt.Format(time.DateOnly))
	}
}
