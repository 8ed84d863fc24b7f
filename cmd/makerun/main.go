package main

import "github.com/konveyor/makerun/pkg/cli"

func main() {
	cli.Execute()
}
