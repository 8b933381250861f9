package main

import "github.com/javanhut/lineage/cli"

func main() {
	cli.Execute()
}
