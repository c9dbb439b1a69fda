package main

import "fromage/internal/cli"

func main() {
	cli.Execute()
}
