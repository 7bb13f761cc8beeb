package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/hwjung-data/labelconv/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; project paths and GCS settings can come from the shell
	_ = godotenv.Load()

	if err := fang.Execute(context.Background(), cmd.RootCmd); err != nil {
		os.Exit(1)
	}
}
