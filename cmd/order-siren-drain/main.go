package main

import "github.com/oshokin/order-siren/cmd/order-siren-drain/cmd"

func main() {
	cmd.Execute()
}
