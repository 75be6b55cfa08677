package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/depdiscover/depviz/pkg/cache"
	"github.com/depdiscover/depviz/pkg/errors"
)

// newCacheCmd creates the cache command group for inspecting and clearing
// the local render cache.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}
	cmd.AddCommand(newCacheInfoCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if err != nil {
				return err
			}
			defer fc.Close()

			stats, err := fc.Stats()
			if err != nil {
				return err
			}
			printSuccess("Render cache")
			printDetail("location: %s", fc.Dir())
			printDetail("entries:  %d", stats.Entries)
			printDetail("size:     %d bytes", stats.Bytes)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := openFileCache()
			if err != nil {
				return err
			}
			defer fc.Close()

			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cache cleared: %s", fc.Dir())
			return nil
		},
	}
}

// openFileCache opens the on-disk cache regardless of the configured
// backend: redis maintenance happens server-side, so the cache subcommands
// only manage the local directory.
func openFileCache() (*cache.FileCache, error) {
	root, err := os.UserCacheDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate user cache directory")
	}
	return cache.NewFileCache(cacheDir(root))
}
