package release

// Platforms is the closed set of build targets a release ships for, in
// publish order. Adding a target means changing this list and the build
// that populates the distribution directory.
var Platforms = []string{
	"darwin-amd64",
	"darwin-arm64",
	"linux-amd64",
	"linux-arm64",
	"windows-amd64",
}
