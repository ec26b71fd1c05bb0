package main

import (
	"github.com/Laisky/laisky-notion-blog/cmd"
)

func main() {
	cmd.Execute()
}
