package main

import "github.com/weftworks/weft/cmd"

func main() {
	cmd.Execute()
}
