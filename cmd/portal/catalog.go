package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/infrastructure/catalog"
	"github.com/99minutos/agency-portal/internal/pkg/config"
)

func newCatalogCommand() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the destination catalog each role resolves to.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("file") {
				cfg, err := config.LoadCatalog(cmd.Context())
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				path = cfg.File
			}
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}

			out := make(map[string][]domain.Destination, len(domain.Roles))
			for _, role := range domain.Roles {
				out[string(role)] = cat.For(role)
			}
			raw, err := yaml.Marshal(map[string]any{"roles": out})
			if err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "YAML catalog file (default $CATALOG_FILE); the built-in catalog is used when empty.")
	return cmd
}
