package main

import "github.com/emrgen/recipe/cmd"

func main() {
	cmd.Execute()
}
