package main

import "github.com/Raisondetr3/Person-Service-SOA/cli/cmd"

func main() {
	cmd.Execute()
}
