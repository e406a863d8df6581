/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName   = flag.String("service", APIServer, "name of the running service, defaults to 'api_server'")
)

// Parse must be called from main after all packages registered their flags.
// Test binaries never call it and run on the defaults.
func Parse() {
	flag.Parse()
}
