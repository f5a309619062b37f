package main

import "go-auth-dashboard/cmd/dashctl/cmd"

func main() {
	cmd.Execute()
}
