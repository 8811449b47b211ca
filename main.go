package main

import "github.com/tetherdb/schemadrift/cmd"

func main() {
	cmd.Execute()
}
