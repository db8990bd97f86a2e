package main

import (
	"context"
	"os"

	"github.com/agbru/distprimes/internal/app"
)

func main() {
	os.Exit(app.RunHelper(context.Background(), os.Args, os.Stderr))
}
