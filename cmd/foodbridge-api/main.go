package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

func main() {
	app := mustBootstrapFoodBridgeAPI()
	defer app.Close()

	if err := app.Run(); err != nil && !errors.Is(err, context.Canceled) {
		app.deps.log.WithError(err).Error("foodbridge-api stopped")
		app.Close()
		logrus.Exit(1)
	}
}
