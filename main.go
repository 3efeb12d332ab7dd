package main

import "github.com/frahmantamala/petirpay/cmd"

func main() {
	cmd.Execute()
}
