package main

import (
	"context"
	"time"

	"github.com/niksmo/egis-bridge/config"
	"github.com/niksmo/egis-bridge/internal/app"
	"github.com/niksmo/egis-bridge/pkg/sigctx"
)

const closeTimeout = 10 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	bridge := app.New(sigCtx, cfg)

	bridge.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	bridge.Close(ctx)
}
