package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/user/fluxplot_go/internal/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"
)

//go:embed all:frontend/public
var assets embed.FS

func main() {
	logger, err := logging.New(os.Getenv("FLUXPLOT_LOG_LEVEL"), false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	app := NewApp(logger) // Defined in app.go

	err = wails.Run(&options.App{
		Title:  "Flux Plotter",
		Width:  720,
		Height: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 46, G: 46, B: 46, A: 255}, // #2e2e2e
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		logger.Fatal("Error running Wails app", zap.Error(err))
	}
}
