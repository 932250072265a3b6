// Command styles manages editing styles: create them from image histories,
// apply them to other images, and exchange them as style files.
package main

import "github.com/mesh-intelligence/styles/internal/cli"

func main() {
	cli.Execute()
}
