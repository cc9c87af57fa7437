// This file is part of Scrim.
//
// Scrim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scrim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scrim.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/scrimgui/scrim/logger"
	"github.com/scrimgui/scrim/modalflag"
	"github.com/scrimgui/scrim/statsview"
	"github.com/scrimgui/scrim/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* %s\n", err)
		os.Exit(10)
	}

	var exitVal int

	switch md.Mode() {
	case "RUN":
		exitVal = run(md)
	case "VERSION":
		exitVal = printVersion(md, os.Stdout)
	}

	os.Exit(exitVal)
}

func run(md *modalflag.Modes) int {
	md.NewMode()

	log := md.AddBool("log", false, "echo log to stderr")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%t)", statsview.Available()))

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Printf("* %s\n", err)
		return 10
	}

	if *log {
		logger.SetEcho(os.Stderr)
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	err = runDemo()
	if err != nil {
		fmt.Printf("* %s\n", err)
		return 10
	}

	return 0
}

func printVersion(md *modalflag.Modes, output io.Writer) int {
	md.NewMode()

	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Printf("* %s\n", err)
		return 10
	}

	ver, rev, _ := version.Version()
	fmt.Fprintf(output, "%s (%s)\n", version.ApplicationName, ver)
	if *revision {
		fmt.Fprintln(output, rev)
	}

	return 0
}
