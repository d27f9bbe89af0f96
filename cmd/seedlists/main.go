// cmd/seedlists: loads demo shopping lists for one user from a YAML file.
// Uso: go run ./cmd/seedlists --file listas.yaml [--user <uuid>] [--token]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/config"
	"github.com/bfrpaulondev/fitness-api/internal/infra"
	"github.com/bfrpaulondev/fitness-api/internal/middleware"
	"github.com/bfrpaulondev/fitness-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file      string
		user      string
		withToken bool
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:          "seedlists",
		Short:        "Carga listas de compra de demo desde un archivo YAML",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := readSeedFile(file)
			if err != nil {
				return err
			}
			listas, err := buildListas(f, user, time.Now())
			if err != nil {
				return err
			}
			if len(listas) == 0 {
				return fmt.Errorf("%s no contiene listas", file)
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d listas validas\n", len(listas))
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			repo := repository.NewListaCompraRepository(db)

			ctx := context.Background()
			for i := range listas {
				if err := repo.Create(ctx, &listas[i]); err != nil {
					return err
				}
				log.Info().
					Str("lista_id", listas[i].ID.String()).
					Str("nombre", listas[i].Nombre).
					Int("items", len(listas[i].Items)).
					Msg("lista cargada")
			}

			if withToken {
				tok, err := devToken(cfg.JWTSecret, listas[0].UserID.String())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "listas.yaml", "archivo YAML con las listas")
	cmd.Flags().StringVarP(&user, "user", "u", "", "UUID del usuario (sobrescribe user_id del archivo)")
	cmd.Flags().BoolVar(&withToken, "token", false, "imprime un JWT de desarrollo para el usuario")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "valida el archivo sin escribir en la base")
	return cmd
}

// devToken signs a short-lived token accepted by middleware.JWTAuth.
// Tokens are normally issued by the auth service; this is for local runs only.
func devToken(secret, userID string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET vacio: no se puede firmar el token")
	}
	claims := middleware.JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(8 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
