// Command lanesinfo prints the compute device and runtime configuration.
package main

import (
	"fmt"

	"github.com/lanegrid/lanes"
)

func main() {
	dev := lanes.GetDevice()
	fmt.Printf("Device:          %s (id %d)\n", dev.Name, dev.ID)
	fmt.Printf("Cores:           %d (max threads %d)\n", dev.NumCores, dev.MaxThreads)
	fmt.Printf("Total memory:    %.1f GiB\n", float64(dev.TotalMem)/(1<<30))
	fmt.Printf("SIMD level:      %s\n", lanes.SIMDLevel())
	fmt.Printf("%s\n", lanes.GetCPUInfo())
	fmt.Printf("Default block:   %d lanes\n", lanes.DefaultBlockSize)

	if version, sum := lanes.Version(); version != "" {
		fmt.Printf("Version:         %s %s\n", version, sum)
	}
}
