// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"annotadmin/internal/models"
	"annotadmin/internal/navigation"
)

const browseHelp = `commands:
  ls              list folders here
  cd NAME|ID      enter a folder (cd .. goes up, cd / to the top level)
  up              go to the parent folder
  back, forward   move through the visit history
  pwd             print the current path
  exit            leave
`

// browser is an interactive walk over the folder tree.
type browser struct {
	a     *app
	out   io.Writer
	nav   *navigation.State
	known navigation.FolderMap
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Walk the folder tree interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			if _, err := a.login(ctx, false); err != nil {
				cancel()
				return err
			}
			cancel()

			known := navigation.FolderMap{}
			b := &browser{a: a, out: a.out, nav: navigation.New(known), known: known}
			return b.run(cmd.InOrStdin())
		},
	}
}

func (b *browser) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(b.out, "%s> ", b.nav.Trail())
		if !sc.Scan() {
			fmt.Fprintln(b.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		var arg string
		if len(fields) > 1 {
			arg = strings.Join(fields[1:], " ")
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		if err := b.exec(fields[0], arg); err != nil {
			fmt.Fprintln(b.out, "error:", err)
		}
	}
}

func (b *browser) exec(cmd, arg string) error {
	switch cmd {
	case "ls":
		folders, err := b.list()
		if err != nil {
			return err
		}
		for _, f := range folders {
			fmt.Fprintf(b.out, "%6d  %s/\n", f.ID, f.Name)
		}
	case "cd":
		return b.cd(arg)
	case "up", "..":
		if !b.nav.GoUp() {
			fmt.Fprintln(b.out, "already at the top level")
		}
	case "back":
		if !b.nav.Back() {
			fmt.Fprintln(b.out, "no previous location")
		}
	case "forward":
		if !b.nav.Forward() {
			fmt.Fprintln(b.out, "no next location")
		}
	case "pwd":
		fmt.Fprintln(b.out, b.nav.Trail())
	case "help", "?":
		fmt.Fprint(b.out, browseHelp)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// list fetches the children of the current folder and remembers them.
func (b *browser) list() ([]models.Folder, error) {
	ctx, cancel := b.a.context()
	defer cancel()
	folders, err := b.a.client.ListFolders(ctx, b.nav.Current())
	if err != nil {
		return nil, err
	}
	b.known.Put(folders...)
	return folders, nil
}

func (b *browser) cd(arg string) error {
	switch arg {
	case "", "/":
		b.nav.SelectFolder(nil)
		return nil
	case "..":
		b.nav.GoUp()
		return nil
	}

	folders, err := b.list()
	if err != nil {
		return err
	}
	for _, f := range folders {
		if f.Name == arg {
			id := f.ID
			b.nav.SelectFolder(&id)
			return nil
		}
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("no folder named %q here", arg)
	}
	if _, ok := b.known[id]; ok {
		b.nav.SelectFolder(&id)
		return nil
	}
	return b.jump(id)
}

// jump enters a folder not seen in any listing yet, taking its trail from
// the server.
func (b *browser) jump(id int64) error {
	ctx, cancel := b.a.context()
	defer cancel()
	f, err := b.a.client.GetFolder(ctx, id)
	if err != nil {
		return err
	}
	trail, err := b.a.client.FolderTrail(ctx, id)
	if err != nil {
		return err
	}
	rememberTrail(b.known, trail)
	b.known.Put(*f)
	b.nav.SelectFolderWithTrail(&id, trail)
	return nil
}

// rememberTrail records each crumb of a server trail as a folder whose
// parent is the crumb before it, so later moves can rebuild the full path.
// Folders already known from a listing are left alone.
func rememberTrail(known navigation.FolderMap, trail models.Trail) {
	var parent *int64
	for _, c := range trail {
		if _, ok := known[c.ID]; !ok {
			known.Put(models.Folder{ID: c.ID, Name: c.Name, ParentID: parent})
		}
		id := c.ID
		parent = &id
	}
}
