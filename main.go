// Command apkpipe resolves an app release from an HTML catalog and downloads it.
package main

import "github.com/gaurav-prasanna/apkpipe/cmd"

func main() {
	cmd.Execute()
}
