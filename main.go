package main

import "github.com/MyCarrier-DevOps/go-gitview/cmd"

func main() {
	cmd.Execute()
}
