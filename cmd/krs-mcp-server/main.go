package main

import (
	"github.com/fleezesd/krs/cmd/krs-mcp-server/app"
)

func main() {
	app.NewApp().Run()
}
