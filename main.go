package main

import "github.com/gaurav-prasanna/mdpreview/cmd"

func main() {
	cmd.Execute()
}
