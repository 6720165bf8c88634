package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type catalogItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

type catalogUser struct {
	Name  string        `yaml:"name"`
	Email string        `yaml:"email"`
	Items []catalogItem `yaml:"items"`
}

// Catalog is the seed file layout: users with the items they own.
type Catalog struct {
	Users []catalogUser `yaml:"users"`
}

type seedResult struct {
	Users int
	Items int
}

func newSeedCmd(opts *options) *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create users and items listed in a catalog file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := opts.logger()
			db, err := opts.openDB(cfg, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			res, err := seedCatalog(ctx, db, catalog)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "done: users=%d items=%d\n", res.Users, res.Items)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "configs/catalog.yaml", "path to catalog.yaml")
	return cmd
}

func loadCatalog(path string) (Catalog, error) {
	var catalog Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog, fmt.Errorf("read catalog: %w", err)
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Users) == 0 {
		return catalog, errors.New("no users in catalog")
	}
	return catalog, nil
}

// seedCatalog creates missing users (matched by email) and their missing
// items (matched by name). Running it twice creates nothing the second time.
func seedCatalog(ctx context.Context, db *database.DB, catalog Catalog) (seedResult, error) {
	var res seedResult

	existing, err := db.ListUsers(ctx)
	if err != nil {
		return res, err
	}
	byEmail := make(map[string]*models.User, len(existing))
	for _, u := range existing {
		byEmail[strings.ToLower(u.Email)] = u
	}

	for _, cu := range catalog.Users {
		if cu.Email == "" || cu.Name == "" {
			continue
		}
		key := strings.ToLower(cu.Email)
		owner, ok := byEmail[key]
		if !ok {
			owner = &models.User{Name: cu.Name, Email: cu.Email}
			if err := db.CreateUser(ctx, owner); err != nil {
				return res, fmt.Errorf("create user %s: %w", cu.Email, err)
			}
			byEmail[key] = owner
			res.Users++
		}

		n, err := seedItems(ctx, db, owner.ID, cu.Items)
		res.Items += n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func seedItems(ctx context.Context, db *database.DB, ownerID int64, items []catalogItem) (int, error) {
	current, err := db.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(current))
	for _, it := range current {
		have[it.Name] = true
	}

	created := 0
	for _, ci := range items {
		if ci.Name == "" || ci.Description == "" || have[ci.Name] {
			continue
		}
		item := &models.Item{
			Name:        ci.Name,
			Description: ci.Description,
			Available:   ci.Available,
			OwnerID:     ownerID,
		}
		if err := db.CreateItem(ctx, item); err != nil {
			return created, fmt.Errorf("create item %s: %w", ci.Name, err)
		}
		have[ci.Name] = true
		created++
	}
	return created, nil
}
