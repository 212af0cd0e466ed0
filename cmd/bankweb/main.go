package main

import "pingate-bank/web/cmd/bankweb/cmd"

func main() {
	cmd.Execute()
}
