package main

import "chooser-bench/internal/cli"

func main() {
	cli.Execute()
}
