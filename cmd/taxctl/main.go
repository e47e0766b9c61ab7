// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for taxctl, the command-line client for
// the annotation console's taxonomy and folder API.
package main

import (
	"os"

	"annotadmin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
