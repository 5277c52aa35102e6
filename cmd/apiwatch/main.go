package main

import "github.com/vietddude/apiwatch/internal/cli"

func main() {
	cli.Execute()
}
