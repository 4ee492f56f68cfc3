package main

import (
	"fmt"
	"time"

	"deedles.dev/xdpy"
	"github.com/spf13/cobra"
)

var flagPingCount int

func init() {
	pingCmd.Flags().IntVarP(&flagPingCount, "count", "c", 5, "number of round trips")
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure request round trip time",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := connect()
		if err != nil {
			return err
		}
		defer d.Close()

		focus, revert, err := xdpy.InputFocus(d)
		if err != nil {
			return err
		}
		logger.Debug("input focus", "window", fmt.Sprintf("%#x", focus), "revert-to", revert)

		var total time.Duration
		for i := 0; i < flagPingCount; i++ {
			start := time.Now()
			if err := xdpy.Synchronize(d); err != nil {
				return err
			}
			rtt := time.Since(start)
			total += rtt
			fmt.Printf("round trip %v: %v\n", i+1, rtt)
		}
		fmt.Printf("average: %v\n", total/time.Duration(flagPingCount))

		return nil
	},
}
