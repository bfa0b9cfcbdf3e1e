// Package main implements the entry point for the converse API server:
// a chat backend with asynchronous reply generation over a local or
// hosted model.
package main

import (
	"log"
)

// main loads configuration, wires the application, and runs the HTTP
// server until a shutdown signal arrives.
func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
