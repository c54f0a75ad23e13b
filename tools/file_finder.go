package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/pkg/errors"
)

// Extensions of the point files picked up in folder processing
var SupportedExtensions = []string{".las", ".txt", ".xyz", ".pts", ".asc"}

type FileFinder interface {
	GetPointFilesToProcess(opts *ingest.Options) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// IsSupportedFile reports whether the extension of filePath is one of SupportedExtensions
func IsSupportedFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func (f *StandardFileFinder) GetPointFilesToProcess(opts *ingest.Options) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for point files in
	// the -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getPointFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getPointFilesFromInputFolder(opts *ingest.Options) ([]string, error) {
	var files = make([]string, 0)

	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, errors.Wrap(err, "reading input folder")
	}
	if !baseInfo.IsDir() {
		return nil, errors.Errorf("%s is not a folder", opts.Input)
	}

	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !opts.Recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			if IsSupportedFile(info.Name()) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}
