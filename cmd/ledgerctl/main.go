package main

import "github.com/razalrahmanp/palaka-sub014/cmd/ledgerctl/cli"

func main() {
	cli.Execute()
}
