// Command hiertree is the command-line front end for the hierarchy
// engine: it validates hierarchy definitions, renders their level
// structure, and streams getNodes/getNodeInstanceKeys output against a
// live source database.
package main

import "github.com/dbsmedya/hierarchyengine/cmd/hiertree/cmd"

func main() {
	cmd.Execute()
}
