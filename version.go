package slate

// Version and BuildDate identify the build; release builds stamp both via
// -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)
