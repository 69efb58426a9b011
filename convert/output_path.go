package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"h2d/config"
	"h2d/document"
	"h2d/state"
)

// outputExt is appended to every output directory name.
const outputExt = ".wordml"

// buildOutputPath returns output directory for converted document based on
// source path and configuration. It uses either default naming scheme or
// user-defined template and takes into account whether to preserve source
// directory structure on the output. It cleans up path and if requested
// transliterates it.
func buildOutputPath(doc *document.Document, src, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)
	defaultName := buildDefaultName(src, env)

	if env.Cfg.Output.OutputNameTemplate == "" {
		return filepath.Join(outDir, defaultName)
	}

	expandedName := expandOutputNameTemplate(doc, src, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(outDir, defaultName)
	}

	return assemblePathWithSubdirs(outDir, expandedName, defaultName, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildDefaultName(src string, env *state.LocalEnv) string {
	base := filepath.Base(src)
	return cleanPathSegment(strings.TrimSuffix(base, filepath.Ext(base)), env) + outputExt
}

func expandOutputNameTemplate(doc *document.Document, src string, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Output.OutputNameTemplate, buildValues(doc, src))
	if err != nil {
		env.Log.Warn("Unable to prepare output name", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(filepath.FromSlash(expandedName))
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed.
func assemblePathWithSubdirs(outDir, expandedName, defaultName string, env *state.LocalEnv) string {
	pathSegments := splitAndCleanPath(expandedName)
	if len(pathSegments) == 0 {
		return filepath.Join(outDir, defaultName)
	}

	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, cleanPathSegment(pathSegments[len(pathSegments)-1], env)+outputExt)
	return filepath.Join(dirParts...)
}

// splitAndCleanPath splits path into its elements dropping empty ones and
// dot components.
func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); ; head, tail = filepath.Split(head) {
		if tail != "" && tail != "." && tail != ".." {
			segments = slices.Insert(segments, 0, tail)
		}
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" || head == path {
			break
		}
		path = head
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
