package main

import "github.com/Mohsinsiddi/w3mood/cmd"

func main() {
	cmd.Execute()
}
