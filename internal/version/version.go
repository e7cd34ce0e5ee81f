package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/jrelvas-ipc/hwcaps-loader/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/jrelvas-ipc/hwcaps-loader/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/jrelvas-ipc/hwcaps-loader/internal/version.Date={{.Date}}
)
