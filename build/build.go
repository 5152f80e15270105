package build

var (
	Name    = "chainfmt"
	Version = "v0.3.0+dev"
)
