package main

import "github.com/nexus-ai/nexus/internal/cli"

func main() {
	cli.Execute()
}
