package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/flippy/internal/flippy/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := flippy(); err != nil {
		logrus.Fatal(err)
	}
}

func flippy() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
