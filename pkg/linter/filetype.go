package linter

import (
	"path/filepath"
	"strings"
)

// FileType selects the rule set for a lint call.
type FileType string

const (
	FileTypeCSS        FileType = "css"
	FileTypeJavaScript FileType = "javascript"
	FileTypeTypeScript FileType = "typescript"
	FileTypeHTML       FileType = "html"
	FileTypeGeneric    FileType = "generic"
)

var fileTypeAliases = map[string]FileType{
	"css":        FileTypeCSS,
	"scss":       FileTypeCSS,
	"sass":       FileTypeCSS,
	"less":       FileTypeCSS,
	"js":         FileTypeJavaScript,
	"jsx":        FileTypeJavaScript,
	"mjs":        FileTypeJavaScript,
	"cjs":        FileTypeJavaScript,
	"javascript": FileTypeJavaScript,
	"ts":         FileTypeTypeScript,
	"tsx":        FileTypeTypeScript,
	"mts":        FileTypeTypeScript,
	"typescript": FileTypeTypeScript,
	"html":       FileTypeHTML,
	"htm":        FileTypeHTML,
	"vue":        FileTypeHTML,
	"svelte":     FileTypeHTML,
	"generic":    FileTypeGeneric,
}

// ParseFileType maps a language name or extension to a FileType. Unknown
// names return FileTypeGeneric and false.
func ParseFileType(s string) (FileType, bool) {
	ft, ok := fileTypeAliases[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))]
	if !ok {
		return FileTypeGeneric, false
	}
	return ft, true
}

// FileTypeFromPath detects the file type from a path's extension.
func FileTypeFromPath(path string) (FileType, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return FileTypeGeneric, false
	}
	return ParseFileType(ext)
}
