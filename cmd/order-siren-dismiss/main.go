package main

import "github.com/oshokin/order-siren/cmd/order-siren-dismiss/cmd"

func main() {
	cmd.Execute()
}
