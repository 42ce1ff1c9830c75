/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/linguacenter/apiserver/cmd"

func main() {
	cmd.Execute()
}
