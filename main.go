package main

import "patrimony-manager/cmd"

func main() {
	cmd.Execute()
}
