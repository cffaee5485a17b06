package main

import "github.com/OpenEMTools/emgeo/cmd/emgeo/cmd"

func main() {
	cmd.Execute()
}
