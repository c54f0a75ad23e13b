package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// GetRootFolder returns the folder holding the executable, or the module root when running tests.
// POINTCLOUD_WORKDIR overrides both.
func GetRootFolder() string {
	assetsFromEnv := os.Getenv("POINTCLOUD_WORKDIR")
	if assetsFromEnv != "" {
		return assetsFromEnv
	} else if strings.HasSuffix(os.Args[0], ".test") || strings.HasSuffix(os.Args[0], ".test.exe") {
		wd, err := os.Getwd()
		if err != nil {
			glog.Fatal("cannot retrieve working directory", err)
		}
		return wd
	} else {
		ex, err := os.Executable()
		if err != nil {
			glog.Fatal("cannot retrieve executable directory", err)
		}
		return filepath.Dir(ex)
	}
}
