package main

import "github.com/mcoot/lifeboard/internal/cli"

func main() {
	cli.Execute()
}
