package main

import "github.com/shaun/contentsync/internal/cmd"

func main() {
	cmd.Execute()
}
