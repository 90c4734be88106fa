package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"stilt/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	fatalOn = flag.Bool("exit-on-fatal", false, "Exit non-zero when the firmware reports a fatal condition")
	quiet   = flag.Bool("quiet", false, "Only print fatal and dropped-frame lines")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	// Blocking reads: a read timeout surfaces as EOF and would end the
	// stream between diagnostic lines.
	cfg.ReadTimeout = 0

	fmt.Printf("Connecting to %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	fmt.Println("Connected. Streaming firmware diagnostics (Ctrl-C to quit).")

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "fatal:"):
			fmt.Printf("[%s] !! %s\n", timestamp(), line)
			if *fatalOn {
				os.Exit(2)
			}

		case strings.HasPrefix(line, "dropped frame:"):
			fmt.Printf("[%s] -- %s\n", timestamp(), line)

		default:
			if !*quiet {
				fmt.Printf("[%s]    %s\n", timestamp(), line)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: read: %v\n", err)
		os.Exit(1)
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05.000")
}
