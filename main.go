package main

import "github.com/niuk/ao3-uploader/cmd"

func main() {
	cmd.Execute()
}
