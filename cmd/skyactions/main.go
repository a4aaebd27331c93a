/*
Copyright © 2025 skyactions authors
*/
package main

import (
	"github.com/ssargent/skyactions/cmd/skyactions/cmd"
	"github.com/ssargent/skyactions/pkg/di"
)

func main() {
	// Initialize dependency injection container
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
