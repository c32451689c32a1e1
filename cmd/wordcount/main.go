package main

import "hashmap-learn/internal/cli"

func main() {
	cli.Execute()
}
