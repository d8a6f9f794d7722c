package store

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Bootstrap creates the operator and sequence tables and seeds the default
// admin user. Domain tables are owned by the schema package.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.SystemTablesSQL()); err != nil {
		return fmt.Errorf("bootstrap system tables: %w", err)
	}
	if err := s.seedAdminUser(ctx); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	return nil
}

func (s *Store) seedAdminUser(ctx context.Context) error {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM _users").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	pb := s.Dialect.NewParamBuilder()
	sql := fmt.Sprintf("INSERT INTO _users (id, email, password_hash, roles) VALUES (%s, %s, %s, %s)",
		pb.Add(uuid.New().String()), pb.Add("admin@localhost"), pb.Add(string(hashBytes)),
		pb.Add(s.Dialect.ArrayParam([]string{"admin"})))
	if _, err := s.DB.ExecContext(ctx, sql, pb.Params()...); err != nil {
		return err
	}

	log.Println("WARNING: Default admin user created (admin@localhost / changeme) - change the password immediately.")
	return nil
}
