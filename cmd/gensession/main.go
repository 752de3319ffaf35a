// Command gensession opens session for existing user and prints cookie to use with curl.
// There is no login endpoint in this service, so it is the way to act as a logged in user.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/pflag"

	"github.com/matheusdealcantara/tabnews.com.br/internal/db"
	"github.com/matheusdealcantara/tabnews.com.br/internal/models"
	"github.com/matheusdealcantara/tabnews.com.br/internal/repository/postgres"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/auth"
)

func main() {
	if err := run(context.Background(), os.Stdout, os.Getenv, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating session: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, getenv func(string) string, args []string) error {
	var (
		dsn      = getenv("DATABASE_URI")
		username string
		grant    bool
	)

	fs := pflag.NewFlagSet("gensession", pflag.ContinueOnError)
	fs.StringVarP(&dsn, "database", "d", dsn, "Database connection string")
	fs.StringVarP(&username, "username", "u", "", "Owner of session")
	fs.BoolVar(&grant, "grant-recovery-by-username", false, "Allow user to request recovery of other accounts by username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if dsn == "" || username == "" {
		return errors.New("database and username are required")
	}

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	storage := postgres.NewStorage(pool, postgres.Config{})

	user, err := storage.User().GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("can't find user %q: %w", username, err)
	}

	if grant && !user.Can(models.FeatureCreateRecoveryTokenUsername) {
		user, err = storage.User().SetFeatures(ctx, user.ID, append(slices.Clone(user.Features), models.FeatureCreateRecoveryTokenUsername))
		if err != nil {
			return fmt.Errorf("can't grant feature: %w", err)
		}
	}

	as, err := auth.NewService(auth.Config{}, storage.Session(), storage.User())
	if err != nil {
		return err
	}

	session, err := as.CreateSession(ctx, user.ID)
	if err != nil {
		return err
	}

	cookie := as.Cookie(session)
	_, err = fmt.Fprintf(out, "%s=%s\n", cookie.Name, cookie.Value)
	return err
}
