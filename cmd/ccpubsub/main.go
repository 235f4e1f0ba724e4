package main

import "github.com/mcoot/ccpubsub/internal/cli"

func main() {
	cli.Execute()
}
