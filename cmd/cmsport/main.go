package main

import "github.com/cmsport/cmsport/cmd/cmsport/cmd"

func main() {
	cmd.Execute()
}
