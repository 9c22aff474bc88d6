/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ChrisX930/sync/cli/cmd"

func main() {
	cmd.Execute()
}
