package main

import "github.com/francois202/gigabanksystem1-sub000/cmd/worker/cmd"

func main() {
	cmd.Execute()
}
