package main

import (
	"github.com/tbg-logistics/wms-labeler/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
