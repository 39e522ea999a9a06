package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"datadesk/m/domain"
	"datadesk/m/internal/auth"
	"datadesk/m/internal/database"
	"datadesk/m/internal/store"
)

type usersFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// LoadUsers creates the users listed in a YAML file unless they already exist.
// Registration only ever grants the user role, so this is how admins are bootstrapped.
func LoadUsers(ctx context.Context, db *sqlx.DB, hasher *auth.Hasher, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read user seed: %w", err)
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return 0, fmt.Errorf("parse user seed: %w", err)
	}

	created := 0
	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		s := store.New(tx)
		for _, u := range uf.Users {
			if u.Username == "" || u.Password == "" {
				continue
			}
			role := domain.RoleUser
			if u.Role != "" {
				r, err := domain.ParseRole(u.Role)
				if err != nil {
					return fmt.Errorf("seed user %s: %w", u.Username, err)
				}
				role = r
			}

			if _, err := s.GetUserByUsername(ctx, u.Username); err == nil {
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			hashed, err := hasher.Hash(u.Password)
			if err != nil {
				return fmt.Errorf("seed user %s: %w", u.Username, err)
			}
			if _, err := s.CreateUser(ctx, u.Username, hashed, role); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("seeded users", "created", created, "path", path)
	return created, nil
}
