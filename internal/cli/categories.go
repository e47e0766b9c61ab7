// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"annotadmin/internal/models"
	"annotadmin/internal/navigation"
	"annotadmin/internal/taxonomy"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// optionalParent turns a --parent flag value into a parent id; 0 means none.
func optionalParent(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the category tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}
			printTree(a.out, a.store.Tree())
			return nil
		},
	}
}

// printTree draws the forest with box-drawing connectors.
func printTree(w io.Writer, roots []*models.TreeNode) {
	var draw func(nodes []*models.TreeNode, prefix string)
	draw = func(nodes []*models.TreeNode, prefix string) {
		for i, n := range nodes {
			branch, next := "├── ", "│   "
			if i == len(nodes)-1 {
				branch, next = "└── ", "    "
			}
			fmt.Fprintf(w, "%s%s%s (%d)\n", prefix, branch, n.Name, n.ID)
			draw(n.Children, prefix+next)
		}
	}
	for _, r := range roots {
		fmt.Fprintf(w, "%s (%d)\n", r.Name, r.ID)
		draw(r.Children, "")
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories indented by depth",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPARENT\tDESCRIPTION")
			for _, e := range a.store.Flat() {
				parent := "-"
				if e.ParentID != nil {
					parent = strconv.FormatInt(*e.ParentID, 10)
				}
				desc := ""
				if e.Description != nil {
					desc = *e.Description
				}
				fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\n", e.ID, strings.Repeat("  ", e.Level), e.Name, parent, desc)
			}
			return tw.Flush()
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		parent      int64
		description string
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connect(ctx); err != nil {
				return err
			}

			var desc *string
			if cmd.Flags().Changed("description") {
				desc = &description
			}
			res := a.store.Create(ctx, args[0], desc, optionalParent(parent))
			if !res.OK() {
				return storeErr(res.Err)
			}
			fmt.Fprintf(a.out, "id: %d\n", res.Value.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent category id")
	cmd.Flags().StringVarP(&description, "description", "d", "", "category description")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:     "update ID",
		Aliases: []string{"rename"},
		Short:   "Rename a category or change its description",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in taxonomy.UpdateInput
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if in.Name == nil && in.Description == nil {
				return fmt.Errorf("nothing to update: pass --name and/or --description")
			}

			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}
			return storeErr(a.store.Update(ctx, id, in).Err)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}

			// Children are re-rooted locally; show which ones.
			var children []string
			for _, c := range a.store.Categories() {
				if c.ParentID != nil && *c.ParentID == id {
					children = append(children, c.Name)
				}
			}
			if err := storeErr(a.store.Delete(ctx, id).Err); err != nil {
				return err
			}
			if len(children) > 0 {
				fmt.Fprintf(a.out, "now top-level: %s\n", strings.Join(children, ", "))
			}
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats ID",
		Short: "Show document and subcategory counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.login(ctx, false); err != nil {
				return err
			}
			st, err := a.client.Stats(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "documents: %d\nsubcategories: %d\n", st.DocumentCount, st.SubcategoryCount)
			return nil
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path ID",
		Short: "Print the ancestor path of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}
			if _, ok := a.store.Get(id); !ok {
				return fmt.Errorf("%w: %d", taxonomy.ErrUnknownCategory, id)
			}

			nav := navigation.New(navigation.CategoryResolver(a.store))
			fmt.Fprintln(a.out, nav.SelectFolder(&id).String())
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report cycles and orphaned categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}
			cats := a.store.Categories()

			for _, o := range taxonomy.Orphans(cats) {
				fmt.Fprintf(a.out, "orphan: %s (%d) points at missing parent %d\n", o.Name, o.ID, *o.ParentID)
			}
			for _, cycle := range taxonomy.FindCycles(cats) {
				ids := make([]string, len(cycle))
				for i, id := range cycle {
					ids[i] = strconv.FormatInt(id, 10)
				}
				fmt.Fprintf(a.out, "cycle: %s\n", strings.Join(ids, " -> "))
			}

			if err := taxonomy.Validate(cats); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ok: %d categories\n", len(cats))
			return nil
		},
	}
}

// exportNode is the serialised form of one category in an export.
type exportNode struct {
	ID          int64        `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Description *string      `json:"description,omitempty" yaml:"description,omitempty"`
	Children    []exportNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func toExport(nodes []*models.TreeNode) []exportNode {
	out := make([]exportNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, exportNode{
			ID:          n.ID,
			Name:        n.Name,
			Description: n.Description,
			Children:    toExport(n.Children),
		})
	}
	return out
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the category tree as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			ctx, cancel := a.context()
			defer cancel()
			if err := a.connectAndFetch(ctx); err != nil {
				return err
			}
			return writeExport(a.out, format, toExport(a.store.Tree()))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func writeExport(w io.Writer, format string, nodes []exportNode) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nodes); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nodes); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
