package main

import "pypi-scraper/cmd"

func main() {
	cmd.Execute()
}
