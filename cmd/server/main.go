// @title DevEvent API
// @version 1.0
// @description Developer event listings and email bookings.
// @BasePath /
package main

import "devevent/cmd/server/cmd"

func main() {
	cmd.Execute()
}
