package main

import "github.com/mcoot/turntimer/internal/cli"

func main() {
	cli.Execute()
}
