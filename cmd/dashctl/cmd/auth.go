package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/util"
)

func newCheckEmailCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-email <email>",
		Short: "Report whether an account exists for the email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := util.NormalizeEmail(args[0])
			if err := fieldError(util.ValidateEmail(email)); err != nil {
				return err
			}

			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			exists, err := c.provider.CheckEmail(cmd.Context(), email)
			if err != nil {
				return err
			}

			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is registered. Sign in with `dashctl login --email %s`.\n", email, email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not registered. Create an account with `dashctl register --email %s`.\n", email, email)
			}
			return nil
		},
	}
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				read, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = read
			}

			req := model.LoginRequest{Email: util.NormalizeEmail(email), Password: password}
			if err := fieldError(util.ValidateLogin(req)); err != nil {
				return err
			}

			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			if err := c.provider.Login(cmd.Context(), req); err != nil {
				return err
			}

			user, _ := c.provider.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var form model.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if form.Password == "" {
				read, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				form.Password = read
			}
			form.ConfirmPassword = form.Password

			if err := fieldError(util.ValidateRegister(form)); err != nil {
				return err
			}

			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			if err := c.provider.Register(cmd.Context(), util.RegisterRequest(form)); err != nil {
				return err
			}

			user, _ := c.provider.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Account created. Signed in as %s.\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password, at least 8 characters (read from stdin when empty)")
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			if err := c.provider.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Remote logout failed: %v\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Renew the access token with the stored refresh token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			if _, err := c.auth.RefreshToken(cmd.Context()); err != nil {
				if errors.Is(err, model.ErrNoRefreshToken) {
					return model.ErrNotLoggedIn
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed.")
			return nil
		},
	}
}

// readPassword takes the first line of r, for piping a password in.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// fieldError folds validation messages into one error, sorted by field.
func fieldError(errs util.FieldErrors) error {
	if errs.Empty() {
		return nil
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, errs[field])
	}
	return errors.New(strings.Join(messages, " "))
}
