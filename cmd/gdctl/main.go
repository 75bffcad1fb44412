/*
   GDDrive - GD-ROM drive service
   Copyright (c) 2026, Ian Micheal

   This file is part of GDDrive.

   GDDrive is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   GDDrive is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with GDDrive. If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"
	"os"

	"github.com/ianmicheal/gddrive/pkg/run"
)

//
var GDDriveVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: gdctl {serve|status|init|mount|toc|read|play|pause|resume|stop|version} ...

run 'gdctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nGDDrive %s\n\n", GDDriveVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "status":
		run.DieOnError(run.NewStatus().Execute(args))

	case "init":
		run.DieOnError(run.NewInit().Execute(args))

	case "mount":
		run.DieOnError(run.NewMount().Execute(args))

	case "toc":
		run.DieOnError(run.NewTOC().Execute(args))

	case "read":
		run.DieOnError(run.NewRead().Execute(args))

	case "play":
		run.DieOnError(run.NewPlay().Execute(args))

	case "pause":
		run.DieOnError(run.NewPause().Execute(args))

	case "resume":
		run.DieOnError(run.NewResume().Execute(args))

	case "stop":
		run.DieOnError(run.NewStop().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}
