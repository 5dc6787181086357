package main

import (
	"context"
	"os"

	"faspmgr/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
