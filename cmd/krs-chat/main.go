package main

import (
	"github.com/fleezesd/krs/cmd/krs-chat/app"
)

func main() {
	app.NewApp().Run()
}
