// Command sdsim runs the SD controller verification harness.
package main

import "github.com/sarchlab/sdsim/sdsim/cmd"

func main() {
	cmd.Execute()
}
