package main

import "github.com/KaramelBytes/eurostat-enrollment/cmd"

func main() {
	cmd.Execute()
}
