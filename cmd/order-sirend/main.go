package main

import "github.com/oshokin/order-siren/cmd/order-sirend/cmd"

func main() {
	cmd.Execute()
}
