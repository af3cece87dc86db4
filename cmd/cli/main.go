package main

import "os"

func main() {
	// Commands print their own error context; no double reporting here.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
