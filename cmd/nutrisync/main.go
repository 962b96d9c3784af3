package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/nutrisync/internal/client/cli"
)

func main() {

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}

}
