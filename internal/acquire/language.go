package acquire

import (
	"path/filepath"
	"strings"
)

// extLanguages maps file extensions to the language label extractors key on.
var extLanguages = map[string]string{
	".py":  "python",
	".pyx": "python",
	".pyw": "python",

	".js":  "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".jsx": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	".java":   "java",
	".scala":  "scala",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".groovy": "groovy",

	".c":   "c",
	".h":   "c",
	".cpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",
	".hpp": "cpp",
	".hxx": "cpp",

	".cs": "csharp",
	".vb": "vbnet",
	".fs": "fsharp",

	".go": "go",
	".rs": "rust",

	".rb":   "ruby",
	".rake": "ruby",
	".php":  "php",

	".swift": "swift",
	".m":     "objective-c",
	".mm":    "objective-c",

	".sql":   "sql",
	".psql":  "sql",
	".plsql": "sql",
	".mysql": "sql",
	".pgsql": "sql",

	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",

	".r":    "r",
	".pl":   "perl",
	".lua":  "lua",
	".dart": "dart",
	".ex":   "elixir",
	".exs":  "elixir",
	".erl":  "erlang",

	".vue":    "vue",
	".svelte": "svelte",
	".html":   "html",
	".css":    "css",
	".scss":   "scss",
	".sass":   "sass",
	".less":   "less",
}

// DetectLanguage returns the language for a path, or "unknown" for
// extensions the analyzer has no use for.
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	return "unknown"
}
