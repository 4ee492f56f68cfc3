package main

import (
	"fmt"

	"deedles.dev/xdpy"
	"github.com/spf13/cobra"
)

// probeExtensions is the fixed list of extensions that info asks the
// server about.
var probeExtensions = []string{
	"BIG-REQUESTS",
	"XC-MISC",
	"RANDR",
	"XFIXES",
	"XInputExtension",
	"MIT-SHM",
	"Present",
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print information about the display",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connect()
		if err != nil {
			return err
		}
		defer d.Close()

		setup, err := d.Setup()
		if err != nil {
			return err
		}

		fmt.Printf("vendor: %v\n", setup.Vendor)
		fmt.Printf("release: %v\n", setup.ReleaseNumber)
		fmt.Printf("protocol: %v.%v\n", setup.ProtocolMajor, setup.ProtocolMinor)
		fmt.Printf("default screen: %v of %v\n", d.DefaultScreen(), setup.NumScreens)
		fmt.Printf("resource ID base: %#08x mask: %#08x\n", setup.ResourceIDBase, setup.ResourceIDMask)
		fmt.Printf("maximum request length: %v units\n", d.MaximumRequestLength())
		fmt.Printf("keycode range: %v-%v\n", setup.MinKeycode, setup.MaxKeycode)

		var ext xdpy.ExtensionManager
		for _, name := range probeExtensions {
			info, err := ext.Info(d, name)
			if err != nil {
				return err
			}
			if info == nil {
				logger.Debug("extension not present", "name", name)
				continue
			}
			fmt.Printf("extension %v: opcode %v, events from %v, errors from %v\n",
				name, info.MajorOpcode, info.FirstEvent, info.FirstError)
		}

		return nil
	},
}
