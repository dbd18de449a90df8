package main

import "github.com/frahmantamala/cardtracker/cmd"

func main() {
	cmd.Execute()
}
