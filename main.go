package main

import "github.com/vitalis-clinic/backoffice/cmd"

func main() {
	cmd.Execute()
}
