package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/stainedglass/pkg/errors"
	"github.com/matzehuels/stainedglass/pkg/pipeline"
)

// stdoutPath makes a single-format command write to standard output.
const stdoutPath = "-"

// defaultBase is the file name stem used when no output is given, matching
// the names the preview writes on save.
func defaultBase(seed uint32) string {
	return "stained-glass-" + strconv.FormatUint(uint64(seed), 10)
}

// basePath derives the base output path. Known format extensions are
// stripped so "out.svg" and "out" name the same set of files.
func basePath(output string, seed uint32) string {
	if output == "" {
		return defaultBase(seed)
	}
	// topology first: its extension ends in .svg
	for _, f := range append([]string{pipeline.FormatTopology}, pipeline.FormatNames...) {
		if ext := "." + pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPaths maps each format to the file it is written to. A single
// format with an explicit output path is written to exactly that path.
func outputPaths(output string, seed uint32, formats []string) map[string]string {
	if len(formats) == 1 && output != "" {
		return map[string]string{formats[0]: output}
	}
	return basedPaths(basePath(output, seed), formats)
}

// basedPaths names one file per format as base.<extension>.
func basedPaths(base string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		paths[f] = base + "." + pipeline.Extension(f)
	}
	return paths
}

// writeArtifacts writes each artifact to the path outputPaths picks, or
// to stdout, and returns the written paths.
func writeArtifacts(stdout io.Writer, artifacts map[string][]byte, formats []string, output string, seed uint32) ([]string, error) {
	if output == stdoutPath {
		if len(formats) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(formats))
		}
		_, err := stdout.Write(artifacts[formats[0]])
		return nil, err
	}
	return writeAll(artifacts, formats, outputPaths(output, seed, formats))
}

// writeAll writes artifacts in formats order.
func writeAll(artifacts map[string][]byte, formats []string, paths map[string]string) ([]string, error) {
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := paths[f]
		if err := writeFile(path, artifacts[f]); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
