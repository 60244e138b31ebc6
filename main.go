package main

import "github.com/PhNyx/jenkins-mcp/cmd"

func main() {
	cmd.Execute()
}
