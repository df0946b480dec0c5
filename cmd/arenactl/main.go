// Command arenactl performs maintenance tasks against the arena database.
package main

import (
	"os"

	"kyc_arena/internal/app"
	"kyc_arena/internal/config"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	app.SetupLogger(cfg)

	root := newRootCmd(func() (*app.App, error) { return app.New(cfg) })
	if err := root.Execute(); err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Command failed")
		os.Exit(1)
	}
}
