package main

import "go.minekube.com/scriptsdk/pkg/cmd/scriptsdk"

func main() {
	scriptsdk.Execute()
}
