package main

import "github.com/refmatrix/refcli/cmd"

func main() {
	cmd.Execute()
}
