package main

import (
	"fmt"
	"strings"

	"github.com/shishobooks/catalog/pkg/authors"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

// authorsCommand maintains the author list. Books can only reference authors
// created here.
func authorsCommand(db *bun.DB) *cli.Command {
	svc := authors.NewService(db)

	return &cli.Command{
		Name:  "authors",
		Usage: "manage the author list",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add an author unless one with the same name exists",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if name == "" {
						return cli.Exit("an author name is required", 1)
					}

					if existing, err := svc.RetrieveAuthor(c.Context, authors.RetrieveAuthorOptions{Name: &name}); err == nil {
						fmt.Printf("Author %q already exists (%d)\n", existing.Name, existing.ID)
						return nil
					}

					author := &models.Author{Name: name}
					if err := svc.CreateAuthor(c.Context, author); err != nil {
						return err
					}
					fmt.Printf("Created author %q (%d)\n", author.Name, author.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list authors by name",
				Action: func(c *cli.Context) error {
					list, err := svc.ListAuthors(c.Context)
					if err != nil {
						return err
					}
					for _, a := range list {
						fmt.Printf("%d\t%s\n", a.ID, a.Name)
					}
					return nil
				},
			},
		},
	}
}
