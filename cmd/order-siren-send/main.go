package main

import "github.com/oshokin/order-siren/cmd/order-siren-send/cmd"

func main() {
	cmd.Execute()
}
