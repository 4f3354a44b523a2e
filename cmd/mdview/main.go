// mdview renders Markdown files to HTML and re-renders them live on change.
package main

import (
	"os"

	"github.com/hupe1980/mdview/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
