package main

import "github.com/goliatone/go-dynform/internal/cli"

func main() {
	cli.Execute()
}
