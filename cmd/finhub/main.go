package main

import "github.com/finhub-network/finhub/internal/cli"

func main() {
	cli.Execute()
}
