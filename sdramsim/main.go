// Command sdramsim runs an SDRAM controller against a device model.
package main

import "github.com/sarchlab/sdramctrl/sdramsim/cmd"

func main() {
	cmd.Execute()
}
