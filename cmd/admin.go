package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/auth"
	"storefront/db"
	"storefront/models"
	"storefront/repository"
)

type adminInput struct {
	Email     string
	Password  string
	Firstname string
	Surname   string
}

var admin adminInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user or promote an existing one",
	Long: `Signup always creates regular users. create-admin is the only way to
grant the admin role. An existing account with the same email is promoted
and, when --password is given, gets the new password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close(gdb)
			_ = log.Sync()
		}()

		if err := db.Migrate(gdb); err != nil {
			return err
		}

		user, created, err := ensureAdmin(cmd.Context(), repository.NewUserRepository(gdb), auth.NewBcryptHasher(cfg.BcryptCost), admin)
		if err != nil {
			return err
		}

		if created {
			log.Info("Admin created", zap.Uint("id", user.ID), zap.String("email", user.Email))
		} else {
			log.Info("User promoted to admin", zap.Uint("id", user.ID), zap.String("email", user.Email))
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&admin.Email, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&admin.Password, "password", "", "admin password (required for a new account)")
	createAdminCmd.Flags().StringVar(&admin.Firstname, "firstname", "Admin", "first name for a new account")
	createAdminCmd.Flags().StringVar(&admin.Surname, "surname", "Admin", "surname for a new account")
	_ = createAdminCmd.MarkFlagRequired("email")
}

// ensureAdmin promotes the user with in.Email or creates it. The bool is true
// when a new account was created.
func ensureAdmin(ctx context.Context, users repository.UserRepository, hasher auth.PasswordHasher, in adminInput) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, false, errors.New("email is required")
	}

	user, err := users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if in.Password == "" {
			return nil, false, errors.New("password is required for a new admin")
		}
		hash, err := hasher.Hash(in.Password)
		if err != nil {
			return nil, false, fmt.Errorf("failed to hash password: %w", err)
		}
		user = &models.User{
			Firstname: in.Firstname,
			Surname:   in.Surname,
			Email:     email,
			Password:  hash,
			Role:      models.RoleAdmin,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	case err != nil:
		return nil, false, err
	}

	user.Role = models.RoleAdmin
	if in.Password != "" {
		hash, err := hasher.Hash(in.Password)
		if err != nil {
			return nil, false, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = hash
	}
	if err := users.Update(ctx, user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}
