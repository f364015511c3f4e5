package main

import "github.com/kwheeler/garage/cmd"

func main() {
	cmd.Execute()
}
