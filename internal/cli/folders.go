// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"annotadmin/internal/models"
	"annotadmin/internal/navigation"
)

func newFoldersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder", "f"},
		Short:   "Inspect and edit the document folder tree",
	}
	cmd.AddCommand(
		newFolderListCmd(a),
		newFolderTreeCmd(a),
		newFolderPathCmd(a),
		newFolderMkdirCmd(a),
		newFolderRenameCmd(a),
		newFolderMoveCmd(a),
		newFolderRemoveCmd(a),
	)
	return cmd
}

func newFolderListCmd(a *app) *cobra.Command {
	var parent int64
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the folders under --parent (top level by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.login(ctx, false); err != nil {
				return err
			}
			folders, err := a.client.ListFolders(ctx, optionalParent(parent))
			if err != nil {
				return err
			}
			return printFolders(a.out, folders)
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "parent folder id")
	return cmd
}

func printFolders(w io.Writer, folders []models.Folder) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPATH")
	for _, f := range folders {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", f.ID, f.Name, f.Path)
	}
	return tw.Flush()
}

// loadFolders fetches the whole folder tree level by level. It returns the
// folders keyed by id and the children of each parent (0 for top level).
func (a *app) loadFolders(ctx context.Context) (navigation.FolderMap, map[int64][]models.Folder, error) {
	all := navigation.FolderMap{}
	children := map[int64][]models.Folder{}

	queue := []*int64{nil}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		list, err := a.client.ListFolders(ctx, parent)
		if err != nil {
			return nil, nil, err
		}
		var key int64
		if parent != nil {
			key = *parent
		}
		children[key] = list
		all.Put(list...)
		for _, f := range list {
			id := f.ID
			queue = append(queue, &id)
		}
	}
	return all, children, nil
}

func newFolderTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the whole folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.login(ctx, false); err != nil {
				return err
			}
			_, children, err := a.loadFolders(ctx)
			if err != nil {
				return err
			}

			var draw func(parent int64, depth int)
			draw = func(parent int64, depth int) {
				for _, f := range children[parent] {
					fmt.Fprintf(a.out, "%*s%s/ (%d)\n", depth*2, "", f.Name, f.ID)
					draw(f.ID, depth+1)
				}
			}
			draw(0, 0)
			return nil
		},
	}
}

func newFolderPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path ID",
		Short: "Print the breadcrumb path of a folder",
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
			all, _, err := a.loadFolders(ctx)
			if err != nil {
				return err
			}
			if _, ok := all[id]; !ok {
				return fmt.Errorf("folder %d not found", id)
			}
			fmt.Fprintln(a.out, navigation.New(all).SelectFolder(&id).String())
			return nil
		},
	}
}

func newFolderMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a folder path, including missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.login(ctx, false); err != nil {
				return err
			}
			f, err := a.client.EnsurePath(ctx, args[0])
			if err != nil {
				return err
			}
			if f == nil {
				return fmt.Errorf("empty folder path %q", args[0])
			}
			fmt.Fprintf(a.out, "id: %d\n", f.ID)
			return nil
		},
	}
}

func newFolderRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
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
			f, err := a.client.RenameFolder(ctx, id, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "folder renamed: %s\n", f.Path)
			return nil
		},
	}
}

func newFolderMoveCmd(a *app) *cobra.Command {
	var parent int64
	cmd := &cobra.Command{
		Use:   "mv ID",
		Short: "Move a folder under --parent (top level when omitted)",
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
			f, err := a.client.MoveFolder(ctx, id, optionalParent(parent))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "folder moved: %s\n", f.Path)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parent, "parent", 0, "new parent folder id")
	return cmd
}

func newFolderRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a folder and everything below it",
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
			res, err := a.client.DeleteFolder(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s (%d folders)\n", res.FolderPath, res.DeletedCount)
			return nil
		},
	}
}
