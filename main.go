package main

import "github.com/deploymenttheory/go-a2fs/cmd"

func main() {
	cmd.Execute()
}
