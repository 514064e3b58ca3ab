package main

import (
	"os"

	"churn-prediction-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
