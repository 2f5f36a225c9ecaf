package markdown

import (
	"path"
	"strings"
)

// languages maps a lowercased file extension to the language name used on
// a fenced code block. Values follow GitHub Linguist's historical names,
// including its odd buckets ("filenames", "data").
var languages = map[string]string{
	"abap":        "ABAP",
	"asp":         "ASP",
	"as":          "ActionScript",
	"adb":         "Ada",
	"apacheconf":  "ApacheConf",
	"cls":         "Apex",
	"applescript": "AppleScript",
	"arc":         "Arc",
	"ino":         "Arduino",
	"asm":         "Assembly",
	"aug":         "Augeas",
	"ahk":         "AutoHotkey",
	"awk":         "Awk",
	"bat":         "Batchfile",
	"befunge":     "Befunge",
	"bmx":         "BlitzMax",
	"boo":         "Boo",
	"b":           "Brainfuck",
	"bro":         "Bro",
	"c":           "C",
	"cs":          "C#",
	"cpp":         "C++",
	"chs":         "Haskell",
	"clp":         "CLIPS",
	"cmake":       "CMake",
	"css":         "CSS",
	"ceylon":      "Ceylon",
	"ck":          "ChucK",
	"clj":         "Clojure",
	"coffee":      "CoffeeScript",
	"lisp":        "Lisp",
	"coq":         "Coq",
	"feature":     "Cucumber",
	"pyx":         "Cython",
	"d":           "D",
	"dot":         "DOT",
	"darcspatch":  "Patch",
	"dart":        "Dart",
	"pas":         "Delphi",
	"dasm16":      "ASM",
	"diff":        "Diff",
	"dylan":       "Dylan",
	"epj":         "Projects",
	"ecl":         "Ecl",
	"e":           "Eiffel",
	"ex":          "Elixir",
	"elm":         "Elm",
	"el":          "Lisp",
	"erl":         "Erlang",
	"fs":          "F#",
	"f90":         "FORTRAN",
	"factor":      "Factor",
	"fy":          "Fancy",
	"fth":         "Forth",
	"s":           "GAS",
	"kid":         "Genshi",
	"ebuild":      "Ebuild",
	"eclass":      "Eclass",
	"po":          "Catalog",
	"go":          "Go",
	"gs":          "Gosu",
	"man":         "Groff",
	"groovy":      "Groovy",
	"gsp":         "Pages",
	"html":        "HTML",
	"erb":         "ERB",
	"phtml":       "PHP",
	"http":        "HTTP",
	"haml":        "Haml",
	"handlebars":  "Handlebars",
	"hs":          "Haskell",
	"hx":          "Haxe",
	"ini":         "INI",
	"irclog":      "log",
	"io":          "Io",
	"ik":          "Ioke",
	"json":        "JSON",
	"java":        "Java",
	"jsp":         "Pages",
	"js":          "JavaScript",
	"kt":          "Kotlin",
	"ll":          "LLVM",
	"lasso":       "Lasso",
	"less":        "Less",
	"ly":          "LilyPond",
	"litcoffee":   "CoffeeScript",
	"lhs":         "Haskell",
	"ls":          "LiveScript",
	"lgt":         "Logtalk",
	"lua":         "Lua",
	"md":          "Markdown",
	"matlab":      "Matlab",
	"minid":       "Max",
	"moo":         "Moocode",
	"moon":        "MoonScript",
	"myt":         "Myghty",
	"nsi":         "NSIS",
	"n":           "Nemerle",
	"nginxconf":   "Nginx",
	"nim":         "Nimrod",
	"m":           "C", // ambiguous with Objective-C; mapped to C
	"opa":         "Opa",
	"cl":          "OpenCL",
	"php":         "PHP",
	"parrot":      "filenames",
	"pir":         "Representation",
	"pasm":        "Assembly",
	"pl":          "Perl",
	"ps1":         "PowerShell",
	"pde":         "Processing",
	"prolog":      "Prolog",
	"pd":          "filenames",
	"py":          "Python",
	"pytb":        "filenames",
	"r":           "R",
	"rhtml":       "RHTML",
	"rkt":         "Racket",
	"raw":         "data",
	"rebol":       "Rebol",
	"rg":          "Rouge",
	"rb":          "Ruby",
	"rs":          "filenames",
	"scss":        "SCSS",
	"sql":         "SQL",
	"sage":        "Sage",
	"sass":        "Sass",
	"scala":       "Scala",
	"scm":         "Scheme",
	"self":        "Self",
	"sh":          "Shell",
	"st":          "Smalltalk",
	"tpl":         "Smarty",
	"sml":         "ML",
	"sc":          "SuperCollider",
	"toml":        "TOML",
	"txl":         "TXL",
	"tcl":         "Tcl",
	"tcsh":        "Tcsh",
	"tex":         "TeX",
	"tea":         "Tea",
	"textile":     "Textile",
	"t":           "Turing",
	"ts":          "TypeScript",
	"vhdl":        "VHDL",
	"vala":        "Vala",
	"vb":          "Visual Basic",
	"xslt":        "XSLT",
	"xtend":       "Xtend",
	"yml":         "YAML",
	"fish":        "fish",
	"mu":          "mupad",
	"ooc":         "ooc",
	"rst":         "reStructuredText",
}

// Language returns the fenced-code language for filename, or "" when the
// extension is missing or unknown.
func Language(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return ""
	}
	return languages[strings.ToLower(ext[1:])]
}
