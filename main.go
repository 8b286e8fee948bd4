package main

import "github.com/ValentinKolb/riakpbc/cmd"

func main() {
	cmd.Execute()
}
