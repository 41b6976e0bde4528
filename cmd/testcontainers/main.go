// Command testcontainers starts the full drivenet container stack
// (database, Authorizer, service) and keeps it running until interrupted.
// Useful for manual exploration against a realistic environment.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dkoren/drivenet/tests/helpers"
)

func main() {
	envFilename := flag.String("f", "", "path to the .env file")
	showHelp := flag.Bool("h", false, "show help")
	flag.Parse()

	if *showHelp {
		fmt.Println(`
Start the drivenet test containers and keep them running until interrupted.

Usage:

  testcontainers [-h] [-f ENV_FILE_PATH]

Environment variables are read from ENV_FILE_PATH when given, otherwise
from the current environment.`)
		return
	}

	if *envFilename != "" {
		log.Printf("Loading environment variables from %s\n", *envFilename)
		if err := godotenv.Load(*envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Println("No environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	var stack *helpers.TestContainers
	go func() {
		var err error
		stack, err = helpers.CreateAllTestContainers(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v\n", err)
		}
	}()

	sig := <-sigs
	log.Printf("Received signal: %v, terminating test containers...\n", sig)
	if stack != nil {
		stack.Terminate(nil)
	}
}
